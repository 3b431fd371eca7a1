package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"training-plan-wizard/internal/domain"
	"training-plan-wizard/internal/domain/model"
	"training-plan-wizard/internal/domain/ports/adapter"
	"training-plan-wizard/internal/domain/ports/repository"
	"training-plan-wizard/internal/infra/logging"
	"training-plan-wizard/internal/infra/metrics"
)

// Step identifies one stage of the wizard.
type Step string

const (
	StepSelection   Step = "selection"
	StepConstraints Step = "constraints"
	StepEquipment   Step = "equipment"
	StepGenerating  Step = "generating"
)

const cancelCallTimeout = 5 * time.Second

// Callbacks is the wizard's boundary with the rest of the application.
type Callbacks struct {
	// OnSuccess receives the generated plan id when the job completes.
	OnSuccess func(resultPlanID string)
	// OnClose fires when the wizard is torn down.
	OnClose func()
	// OnProgress receives a display message for every applied snapshot.
	// Optional.
	OnProgress func(message string)
}

// Wizard drives the plan-generation flow: staged input collection, one-shot
// submission, bounded status polling and cancellation. Each instance owns its
// accumulator, job handle and poll session; nothing is process-wide, so two
// open wizards never interfere.
type Wizard struct {
	gen     adapter.GenerationService
	drafts  repository.DraftRepository             // optional
	history repository.SubmissionHistoryRepository // optional
	poll    PollConfig
	cb      Callbacks
	log     *zerolog.Logger
	userID  string

	mu          sync.Mutex
	step        Step
	req         *model.PlanRequest
	errs        []string
	handle      *model.JobHandle
	poller      *Poller
	submittedAt time.Time
	closed      bool
}

// NewWizard constructs a wizard for one user session. drafts and history may
// be nil when persistence is disabled.
func NewWizard(
	gen adapter.GenerationService,
	drafts repository.DraftRepository,
	history repository.SubmissionHistoryRepository,
	poll PollConfig,
	userID string,
	cb Callbacks,
	log *zerolog.Logger,
) *Wizard {
	return &Wizard{
		gen:     gen,
		drafts:  drafts,
		history: history,
		poll:    poll.withDefaults(),
		cb:      cb,
		log:     log,
		userID:  userID,
		step:    StepSelection,
		req:     model.NewPlanRequest(),
	}
}

// Step returns the current wizard step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Request returns a copy of the accumulator.
func (w *Wizard) Request() *model.PlanRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.req.Clone()
}

// Errors returns the current error list (validation or terminal job errors).
func (w *Wizard) Errors() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.errs...)
}

// ActiveJob reports the live job handle, or nil when none exists.
func (w *Wizard) ActiveJob() *model.JobHandle {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.handle == nil {
		return nil
	}
	cp := *w.handle
	return &cp
}

// LoadDraft replaces the accumulator with a previously persisted draft, if one
// exists. Only valid before the first Advance.
func (w *Wizard) LoadDraft(ctx context.Context) error {
	if w.drafts == nil {
		return nil
	}
	draft, err := w.drafts.GetDraft(ctx, w.userID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil
		}
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepSelection {
		return domain.ErrInvalidArgument
	}
	w.req = draft
	return nil
}

// Advance merges the step's data into the accumulator and moves forward.
// From equipment it validates the full request and submits it: on validation
// failure the returned list is non-empty and no network call is made; on
// submission failure the wizard stays at equipment with the server's message.
// Advancing from generating is a no-op.
func (w *Wizard) Advance(ctx context.Context, patch *model.RequestPatch) (Step, []string) {
	w.mu.Lock()
	if w.closed {
		step := w.step
		w.mu.Unlock()
		return step, []string{domain.ErrWizardClosed.Error()}
	}
	if w.step == StepGenerating {
		step := w.step
		w.mu.Unlock()
		return step, nil
	}

	w.req.Apply(patch)
	w.errs = nil
	step := w.step
	req := w.req.Clone()
	w.mu.Unlock()

	w.saveDraft(ctx, req)

	switch step {
	case StepSelection:
		return w.setStep(StepConstraints), nil
	case StepConstraints:
		return w.setStep(StepEquipment), nil
	case StepEquipment:
		return w.submit(ctx, req)
	}
	return step, nil
}

// Retreat steps backward. Only legal from constraints and equipment; anywhere
// else the state is unchanged.
func (w *Wizard) Retreat() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.step {
	case StepConstraints:
		w.step = StepSelection
		w.errs = nil
	case StepEquipment:
		w.step = StepConstraints
		w.errs = nil
	}
	return w.step
}

// submit is the one-shot submission gate: validate, create the job, start
// polling. It never leaves the wizard at generating without a live handle.
func (w *Wizard) submit(ctx context.Context, req *model.PlanRequest) (Step, []string) {
	defer logging.TraceDuration(w.log, "Wizard.submit")()

	if errs := req.Validate(); len(errs) > 0 {
		w.mu.Lock()
		w.errs = errs
		w.mu.Unlock()
		return StepEquipment, errs
	}

	traceID := uuid.NewString()
	ctx = logging.WithTraceID(logging.WithUserID(ctx, w.userID), traceID)
	handle, err := w.gen.CreateJob(ctx, w.userID, req)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Failed to start plan generation"
		}
		w.log.Warn().Str("trace_id", traceID).Err(err).Msg("create job failed")
		w.mu.Lock()
		w.errs = []string{msg}
		w.mu.Unlock()
		return StepEquipment, []string{msg}
	}

	poller := NewPoller(w.gen, w.poll, w.log)

	w.mu.Lock()
	w.step = StepGenerating
	w.handle = handle
	w.poller = poller
	w.submittedAt = time.Now()
	w.mu.Unlock()

	w.log.Info().Str("trace_id", traceID).Str("job_id", handle.JobID).Msg("generation job submitted")
	w.recordSubmission(ctx, traceID, handle, req)

	// Polling outlives the Advance call; detach it from the caller's context.
	if err := poller.Start(context.Background(), handle, w.onSnapshot, w.onOutcome); err != nil {
		// Cannot happen with a fresh poller, but never stay at generating
		// without a running session.
		w.mu.Lock()
		w.step = StepEquipment
		w.handle = nil
		w.poller = nil
		w.errs = []string{err.Error()}
		w.mu.Unlock()
		return StepEquipment, []string{err.Error()}
	}

	return StepGenerating, nil
}

func (w *Wizard) onSnapshot(snap *model.JobSnapshot) {
	if w.cb.OnProgress != nil {
		w.cb.OnProgress(Interpret(snap))
	}
}

func (w *Wizard) onOutcome(out PollOutcome) {
	w.mu.Lock()
	handle := w.handle
	submittedAt := w.submittedAt
	w.handle = nil
	w.poller = nil

	var outcome string
	switch {
	case out.Status == model.JobStatusCompleted:
		outcome = "completed"
		w.closed = true
	case out.TimedOut:
		outcome = "timeout"
		w.step = StepEquipment
		w.errs = []string{out.Message}
	case out.Status == model.JobStatusFailed:
		outcome = "failed"
		w.step = StepEquipment
		w.errs = []string{out.Message}
	case out.Status == model.JobStatusCancelled:
		outcome = "cancelled"
		w.step = StepEquipment
		w.errs = []string{out.Message}
	}
	w.mu.Unlock()

	metrics.IncJobOutcome(outcome)
	if !submittedAt.IsZero() {
		metrics.ObserveGenerationDuration(outcome, time.Since(submittedAt).Seconds())
	}
	if handle != nil {
		w.recordOutcome(handle.JobID, outcome, out.PlanID, out.Message)
	}

	if outcome == "completed" {
		w.clearDraft()
		if w.cb.OnSuccess != nil {
			w.cb.OnSuccess(out.PlanID)
		}
	}
}

// Cancel halts any live poll session immediately, fires a best-effort cancel
// to the backend and returns the wizard to the equipment step with the
// accumulator intact. Safe to call at any time, including mid-fetch.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	handle := w.handle
	poller := w.poller
	w.handle = nil
	w.poller = nil
	if w.step == StepGenerating {
		w.step = StepEquipment
	}
	w.mu.Unlock()

	if poller != nil {
		poller.Stop()
	}
	if handle != nil {
		metrics.IncJobOutcome("cancelled")
		w.recordOutcome(handle.JobID, "cancelled", "", "")
		go w.cancelRemote(handle)
	}
}

// Close tears the wizard down. It takes the same path as an explicit cancel,
// so no timer or poll session can survive the owning UI.
func (w *Wizard) Close() {
	w.Cancel()

	w.mu.Lock()
	alreadyClosed := w.closed
	w.closed = true
	w.mu.Unlock()

	if !alreadyClosed && w.cb.OnClose != nil {
		w.cb.OnClose()
	}
}

// cancelRemote is fire-and-forget: its failure is logged, never surfaced.
func (w *Wizard) cancelRemote(handle *model.JobHandle) {
	ctx, cancel := context.WithTimeout(context.Background(), cancelCallTimeout)
	defer cancel()
	if err := w.gen.CancelJob(ctx, handle); err != nil {
		w.log.Debug().Err(err).Str("job_id", handle.JobID).Msg("cancel job call failed")
	}
}

func (w *Wizard) setStep(s Step) Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = s
	return s
}

func (w *Wizard) saveDraft(ctx context.Context, req *model.PlanRequest) {
	if w.drafts == nil {
		return
	}
	if err := w.drafts.SetDraft(ctx, w.userID, req); err != nil {
		w.log.Debug().Err(err).Msg("draft save failed")
	}
}

func (w *Wizard) clearDraft() {
	if w.drafts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cancelCallTimeout)
	defer cancel()
	if err := w.drafts.ClearDraft(ctx, w.userID); err != nil {
		w.log.Debug().Err(err).Msg("draft clear failed")
	}
}

func (w *Wizard) recordSubmission(ctx context.Context, id string, handle *model.JobHandle, req *model.PlanRequest) {
	if w.history == nil {
		return
	}
	rec := &model.SubmissionRecord{
		ID:          id,
		JobID:       handle.JobID,
		UserID:      w.userID,
		RaceID:      req.RaceID,
		SubmittedAt: time.Now(),
	}
	if err := w.history.RecordSubmission(ctx, rec); err != nil {
		w.log.Debug().Err(err).Msg("submission record failed")
	}
}

func (w *Wizard) recordOutcome(jobID, outcome, planID, errMsg string) {
	if w.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cancelCallTimeout)
	defer cancel()
	if err := w.history.RecordOutcome(ctx, jobID, outcome, planID, errMsg); err != nil {
		w.log.Debug().Err(err).Msg("outcome record failed")
	}
}
