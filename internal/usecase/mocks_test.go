package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"training-plan-wizard/internal/domain"
	"training-plan-wizard/internal/domain/model"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockGenService is a hand-rolled GenerationService double. Each method can be
// overridden per test via its Func field; call counts are tracked.
type mockGenService struct {
	mu sync.Mutex

	CreateJobFunc    func(ctx context.Context, userID string, req *model.PlanRequest) (*model.JobHandle, error)
	GetJobStatusFunc func(ctx context.Context, handle *model.JobHandle) (*model.JobSnapshot, error)
	CancelJobFunc    func(ctx context.Context, handle *model.JobHandle) error

	createCalls int
	statusCalls int
	cancelCalls int
}

func newMockGenService() *mockGenService {
	return &mockGenService{}
}

func (m *mockGenService) CreateJob(ctx context.Context, userID string, req *model.PlanRequest) (*model.JobHandle, error) {
	m.mu.Lock()
	m.createCalls++
	fn := m.CreateJobFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, userID, req)
	}
	return &model.JobHandle{JobID: "job-1", UserID: userID}, nil
}

func (m *mockGenService) GetJobStatus(ctx context.Context, handle *model.JobHandle) (*model.JobSnapshot, error) {
	m.mu.Lock()
	m.statusCalls++
	fn := m.GetJobStatusFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, handle)
	}
	return &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 50}, nil
}

func (m *mockGenService) CancelJob(ctx context.Context, handle *model.JobHandle) error {
	m.mu.Lock()
	m.cancelCalls++
	fn := m.CancelJobFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, handle)
	}
	return nil
}

func (m *mockGenService) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

func (m *mockGenService) StatusCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

func (m *mockGenService) CancelCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelCalls
}

// scriptedStatuses returns a GetJobStatusFunc that plays back snaps in order,
// repeating the last one when the script runs out.
func scriptedStatuses(snaps ...*model.JobSnapshot) func(ctx context.Context, handle *model.JobHandle) (*model.JobSnapshot, error) {
	var mu sync.Mutex
	idx := 0
	return func(ctx context.Context, handle *model.JobHandle) (*model.JobSnapshot, error) {
		mu.Lock()
		defer mu.Unlock()
		snap := snaps[idx]
		if idx < len(snaps)-1 {
			idx++
		}
		return snap, nil
	}
}

// memDraftRepo is an in-memory DraftRepository.
type memDraftRepo struct {
	mu     sync.Mutex
	drafts map[string]*model.PlanRequest
}

func newMemDraftRepo() *memDraftRepo {
	return &memDraftRepo{drafts: make(map[string]*model.PlanRequest)}
}

func (m *memDraftRepo) SetDraft(ctx context.Context, userID string, draft *model.PlanRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[userID] = draft.Clone()
	return nil
}

func (m *memDraftRepo) GetDraft(ctx context.Context, userID string) (*model.PlanRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d.Clone(), nil
}

func (m *memDraftRepo) ClearDraft(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, userID)
	return nil
}

// memHistoryRepo is an in-memory SubmissionHistoryRepository.
type memHistoryRepo struct {
	mu   sync.Mutex
	recs []*model.SubmissionRecord
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{}
}

func (m *memHistoryRepo) RecordSubmission(ctx context.Context, rec *model.SubmissionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.recs = append(m.recs, &cp)
	return nil
}

func (m *memHistoryRepo) RecordOutcome(ctx context.Context, jobID, outcome, resultPlanID, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recs {
		if r.JobID == jobID {
			r.Outcome = outcome
			r.ResultPlanID = resultPlanID
			r.ErrorMessage = errorMessage
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memHistoryRepo) ListRecent(ctx context.Context, userID string, limit int) ([]*model.SubmissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.SubmissionRecord
	for i := len(m.recs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.recs[i].UserID == userID {
			cp := *m.recs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
