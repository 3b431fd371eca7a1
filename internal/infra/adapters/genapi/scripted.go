package genapi

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"training-plan-wizard/internal/domain"
	"training-plan-wizard/internal/domain/model"
	"training-plan-wizard/internal/domain/ports/adapter"
)

var _ adapter.GenerationService = (*Scripted)(nil)

// Scripted implements adapter.GenerationService for local/dev runs: each
// status fetch returns the next snapshot from the script, and the final
// snapshot repeats once the script is exhausted. No real backend involved.
type Scripted struct {
	mu        sync.Mutex
	script    []model.JobSnapshot
	idx       int
	handle    *model.JobHandle
	cancelled bool
}

// NewScripted builds an adapter that plays back the given snapshots. A nil
// script yields a short pending -> processing -> completed run.
func NewScripted(script []model.JobSnapshot) *Scripted {
	if len(script) == 0 {
		script = []model.JobSnapshot{
			{Status: model.JobStatusPending, Progress: 0},
			{Status: model.JobStatusProcessing, Progress: 35},
			{Status: model.JobStatusProcessing, Progress: 70},
			{Status: model.JobStatusCompleted, Progress: 100, ResultPlanID: uuid.NewString()},
		}
	}
	return &Scripted{script: script}
}

func (s *Scripted) CreateJob(ctx context.Context, userID string, req *model.PlanRequest) (*model.JobHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = 0
	s.cancelled = false
	s.handle = &model.JobHandle{JobID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
	cp := *s.handle
	return &cp, nil
}

func (s *Scripted) GetJobStatus(ctx context.Context, handle *model.JobHandle) (*model.JobSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil || handle.JobID != s.handle.JobID {
		return nil, domain.ErrNotFound
	}
	if s.cancelled {
		return &model.JobSnapshot{Status: model.JobStatusCancelled}, nil
	}
	snap := s.script[s.idx]
	if s.idx < len(s.script)-1 {
		s.idx++
	}
	return &snap, nil
}

func (s *Scripted) CancelJob(ctx context.Context, handle *model.JobHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil || handle.JobID != s.handle.JobID {
		return domain.ErrNotFound
	}
	s.cancelled = true
	return nil
}
