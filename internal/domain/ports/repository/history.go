package repository

import (
	"context"

	"training-plan-wizard/internal/domain/model"
)

// SubmissionHistoryRepository records generation attempts locally so the user
// can see their recent generations and their outcomes.
type SubmissionHistoryRepository interface {
	RecordSubmission(ctx context.Context, rec *model.SubmissionRecord) error
	// RecordOutcome finalizes the record for jobID with a terminal outcome.
	RecordOutcome(ctx context.Context, jobID, outcome, resultPlanID, errorMessage string) error
	ListRecent(ctx context.Context, userID string, limit int) ([]*model.SubmissionRecord, error)
}
