package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"training-plan-wizard/internal/domain"
	"training-plan-wizard/internal/domain/model"
	"training-plan-wizard/internal/domain/ports/repository"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

// DraftRepo persists the wizard accumulator in Redis so a dismissed wizard can
// pick up where the user left off. Drafts expire after the TTL.
type DraftRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewDraftRepo(client RedisClient, ttl time.Duration) *DraftRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DraftRepo{client: client, ttl: ttl}
}

func (r *DraftRepo) draftKey(userID string) string {
	return fmt.Sprintf("plan_draft:%s", userID)
}

func (r *DraftRepo) SetDraft(ctx context.Context, userID string, draft *model.PlanRequest) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.draftKey(userID), data, r.ttl)
}

func (r *DraftRepo) GetDraft(ctx context.Context, userID string) (*model.PlanRequest, error) {
	data, err := r.client.Get(ctx, r.draftKey(userID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var draft model.PlanRequest
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *DraftRepo) ClearDraft(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.draftKey(userID))
}
