package adapter

import (
	"context"

	"training-plan-wizard/internal/domain/model"
)

// GenerationService is the boundary with the plan-generation backend. The
// backend is consumed purely through this status-polling contract; the
// generation algorithm itself is opaque to this module.
type GenerationService interface {
	// CreateJob submits the assembled request and returns a handle for the new
	// job. It must not be retried automatically on failure.
	CreateJob(ctx context.Context, userID string, req *model.PlanRequest) (*model.JobHandle, error)

	// GetJobStatus fetches a fresh snapshot for the job. Idempotent and safe to
	// call repeatedly.
	GetJobStatus(ctx context.Context, handle *model.JobHandle) (*model.JobSnapshot, error)

	// CancelJob asks the backend to stop the job. Best effort: callers treat
	// failure as non-fatal.
	CancelJob(ctx context.Context, handle *model.JobHandle) error
}
