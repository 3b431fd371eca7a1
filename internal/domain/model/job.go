package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether no further status change can follow.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// JobHandle is the opaque reference to a submitted generation job. It is
// created once at submission time and never mutated; the wizard discards it on
// any terminal outcome.
type JobHandle struct {
	JobID     string
	UserID    string
	CreatedAt time.Time
}

// JobSnapshot is one fetched status record. Every poll fully replaces the
// previous snapshot; fields are never merged across polls. Progress is
// expected to be non-decreasing but the contract does not guarantee it.
type JobSnapshot struct {
	Status       JobStatus `json:"status"`
	Progress     int       `json:"progress"`
	CurrentStep  string    `json:"current_step,omitempty"`
	RetryCount   int       `json:"retry_count"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ResultPlanID string    `json:"result_plan_id,omitempty"`
}

// SubmissionRecord is one locally-remembered generation attempt, written at
// submission time and finalized when the job reaches a terminal outcome.
type SubmissionRecord struct {
	ID           string
	JobID        string
	UserID       string
	RaceID       int
	SubmittedAt  time.Time
	Outcome      string // completed | failed | cancelled | timeout, empty while running
	ResultPlanID string
	ErrorMessage string
}
