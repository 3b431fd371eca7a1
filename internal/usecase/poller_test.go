package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"training-plan-wizard/internal/domain"
	"training-plan-wizard/internal/domain/model"
)

func testPollConfig() PollConfig {
	return PollConfig{Interval: time.Millisecond, MaxAttempts: 60}
}

func testHandle() *model.JobHandle {
	return &model.JobHandle{JobID: "job-1", UserID: "u1"}
}

func waitDone(t *testing.T, p *Poller) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not finish in time")
	}
}

func TestPollerCompletedRun(t *testing.T) {
	gen := newMockGenService()
	gen.GetJobStatusFunc = scriptedStatuses(
		&model.JobSnapshot{Status: model.JobStatusPending, Progress: 0},
		&model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 25},
		&model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 60},
		&model.JobSnapshot{Status: model.JobStatusCompleted, Progress: 100, ResultPlanID: "plan-9"},
	)

	var mu sync.Mutex
	var messages []string
	var outcomes []PollOutcome

	p := NewPoller(gen, testPollConfig(), newTestLogger())
	err := p.Start(context.Background(), testHandle(),
		func(snap *model.JobSnapshot) {
			mu.Lock()
			messages = append(messages, Interpret(snap))
			mu.Unlock()
		},
		func(out PollOutcome) {
			mu.Lock()
			outcomes = append(outcomes, out)
			mu.Unlock()
		},
	)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, p)

	if got := gen.StatusCalls(); got != 4 {
		t.Fatalf("status calls = %d, want 4", got)
	}
	// No fetch may arrive after the terminal snapshot.
	time.Sleep(20 * time.Millisecond)
	if got := gen.StatusCalls(); got != 4 {
		t.Fatalf("status calls after terminal = %d, want 4", got)
	}

	want := []string{
		"Starting generation",
		"Validating your inputs",
		"Generating your plan",
		"Completed",
	}
	mu.Lock()
	defer mu.Unlock()
	if len(messages) != len(want) {
		t.Fatalf("messages = %v, want %v", messages, want)
	}
	for i := range want {
		if messages[i] != want[i] {
			t.Errorf("message[%d] = %q, want %q", i, messages[i], want[i])
		}
	}
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want exactly 1", len(outcomes))
	}
	if outcomes[0].Status != model.JobStatusCompleted || outcomes[0].PlanID != "plan-9" {
		t.Errorf("outcome = %+v, want completed with plan-9", outcomes[0])
	}
}

func TestPollerFailedUsesDefaultMessage(t *testing.T) {
	gen := newMockGenService()
	gen.GetJobStatusFunc = scriptedStatuses(
		&model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 30},
		&model.JobSnapshot{Status: model.JobStatusFailed, Progress: 30},
	)

	outc := make(chan PollOutcome, 1)
	p := NewPoller(gen, testPollConfig(), newTestLogger())
	if err := p.Start(context.Background(), testHandle(), nil, func(out PollOutcome) { outc <- out }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, p)

	out := <-outc
	if out.Status != model.JobStatusFailed {
		t.Fatalf("status = %q, want failed", out.Status)
	}
	if out.Message != "Training plan generation failed" {
		t.Errorf("message = %q, want default failure message", out.Message)
	}
}

func TestPollerFailedKeepsServerMessage(t *testing.T) {
	gen := newMockGenService()
	gen.GetJobStatusFunc = scriptedStatuses(
		&model.JobSnapshot{Status: model.JobStatusFailed, ErrorMessage: "model quota exceeded"},
	)

	outc := make(chan PollOutcome, 1)
	p := NewPoller(gen, testPollConfig(), newTestLogger())
	if err := p.Start(context.Background(), testHandle(), nil, func(out PollOutcome) { outc <- out }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, p)

	if out := <-outc; out.Message != "model quota exceeded" {
		t.Errorf("message = %q, want server message", out.Message)
	}
}

func TestPollerAttemptCeiling(t *testing.T) {
	gen := newMockGenService()
	gen.GetJobStatusFunc = scriptedStatuses(
		&model.JobSnapshot{Status: model.JobStatusProcessing, Progress: 42},
	)

	outc := make(chan PollOutcome, 1)
	p := NewPoller(gen, PollConfig{Interval: time.Millisecond, MaxAttempts: 3}, newTestLogger())
	if err := p.Start(context.Background(), testHandle(), nil, func(out PollOutcome) { outc <- out }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, p)

	if got := gen.StatusCalls(); got != 3 {
		t.Fatalf("status calls = %d, want 3", got)
	}
	out := <-outc
	if !out.TimedOut {
		t.Fatal("outcome not marked as timed out")
	}
	if out.Message != "Training plan generation timed out. Please try again." {
		t.Errorf("message = %q, want timeout message", out.Message)
	}
	if out.Message == "Training plan generation failed" {
		t.Error("timeout must be distinguishable from server failure")
	}
}

func TestPollerTransientErrorsCountTowardCeiling(t *testing.T) {
	gen := newMockGenService()
	gen.GetJobStatusFunc = func(ctx context.Context, handle *model.JobHandle) (*model.JobSnapshot, error) {
		return nil, errors.New("connection refused")
	}

	var updates int
	outc := make(chan PollOutcome, 1)
	p := NewPoller(gen, PollConfig{Interval: time.Millisecond, MaxAttempts: 4}, newTestLogger())
	err := p.Start(context.Background(), testHandle(),
		func(*model.JobSnapshot) { updates++ },
		func(out PollOutcome) { outc <- out },
	)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, p)

	if got := gen.StatusCalls(); got != 4 {
		t.Fatalf("status calls = %d, want 4", got)
	}
	if updates != 0 {
		t.Errorf("updates = %d, want 0 for error-only run", updates)
	}
	if out := <-outc; !out.TimedOut {
		t.Fatal("error-only run must end in timeout")
	}
}

func TestPollerStopDiscardsInFlightSnapshot(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})

	gen := newMockGenService()
	gen.GetJobStatusFunc = func(ctx context.Context, handle *model.JobHandle) (*model.JobSnapshot, error) {
		close(inFlight)
		<-release
		return &model.JobSnapshot{Status: model.JobStatusCompleted, ResultPlanID: "late"}, nil
	}

	var updates, outcomes int
	p := NewPoller(gen, testPollConfig(), newTestLogger())
	err := p.Start(context.Background(), testHandle(),
		func(*model.JobSnapshot) { updates++ },
		func(PollOutcome) { outcomes++ },
	)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	<-inFlight
	p.Stop()
	close(release)
	waitDone(t, p)

	if updates != 0 {
		t.Errorf("updates = %d, want 0: late snapshot must be discarded", updates)
	}
	if outcomes != 0 {
		t.Errorf("outcomes = %d, want 0: explicit stop produces no outcome", outcomes)
	}
	if got := p.State(); got != PollStopped {
		t.Errorf("state = %q, want stopped", got)
	}
}

func TestPollerStartGuards(t *testing.T) {
	gen := newMockGenService()
	gen.GetJobStatusFunc = scriptedStatuses(
		&model.JobSnapshot{Status: model.JobStatusProcessing},
	)

	p := NewPoller(gen, testPollConfig(), newTestLogger())
	if err := p.Start(context.Background(), nil, nil, nil); !errors.Is(err, domain.ErrNoActiveJob) {
		t.Fatalf("Start(nil handle) = %v, want ErrNoActiveJob", err)
	}
	if err := p.Start(context.Background(), testHandle(), nil, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(context.Background(), testHandle(), nil, nil); !errors.Is(err, domain.ErrAlreadyPolling) {
		t.Fatalf("second Start = %v, want ErrAlreadyPolling", err)
	}
	p.Stop()
	waitDone(t, p)
}
