package repository

import (
	"context"

	"training-plan-wizard/internal/domain/model"
)

// DraftRepository is the port for persisting the wizard accumulator between
// sessions, so a dismissed wizard can resume where the user left off.
type DraftRepository interface {
	SetDraft(ctx context.Context, userID string, draft *model.PlanRequest) error
	GetDraft(ctx context.Context, userID string) (*model.PlanRequest, error)
	ClearDraft(ctx context.Context, userID string) error
}
