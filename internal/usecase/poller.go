package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"training-plan-wizard/internal/domain"
	"training-plan-wizard/internal/domain/model"
	"training-plan-wizard/internal/domain/ports/adapter"
	"training-plan-wizard/internal/infra/logging"
	"training-plan-wizard/internal/infra/metrics"
)

type PollState string

const (
	PollIdle    PollState = "idle"
	PollPolling PollState = "polling"
	PollStopped PollState = "stopped"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 60
)

// Messages surfaced when the server supplies none.
const (
	msgGenerationFailed    = "Training plan generation failed"
	msgGenerationCancelled = "Training plan generation was cancelled"
	msgGenerationTimedOut  = "Training plan generation timed out. Please try again."
)

// PollConfig bounds the poll session.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

func (c PollConfig) withDefaults() PollConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// PollOutcome is the single terminal result of a poll session. Exactly one of
// the terminal statuses or TimedOut is set; an explicitly stopped session
// produces no outcome at all.
type PollOutcome struct {
	Status   model.JobStatus
	TimedOut bool
	PlanID   string
	Message  string
}

// Poller owns the repeating status fetch for one job: scheduling, attempt
// ceiling, per-attempt error tolerance and teardown. It never issues fetch n+1
// before fetch n resolves; a single re-arming timer keeps slow responses from
// overlapping the next tick.
type Poller struct {
	gen adapter.GenerationService
	cfg PollConfig
	log *zerolog.Logger

	mu     sync.Mutex
	state  PollState
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(gen adapter.GenerationService, cfg PollConfig, log *zerolog.Logger) *Poller {
	return &Poller{
		gen:   gen,
		cfg:   cfg.withDefaults(),
		log:   log,
		state: PollIdle,
	}
}

func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done is closed once the poll goroutine has fully exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Start transitions idle -> polling and begins fetching. onUpdate fires for
// every applied snapshot, onDone exactly once with the terminal outcome unless
// the session is stopped explicitly first. Both callbacks run on the poll
// goroutine.
func (p *Poller) Start(ctx context.Context, handle *model.JobHandle, onUpdate func(*model.JobSnapshot), onDone func(PollOutcome)) error {
	if handle == nil || handle.JobID == "" {
		return domain.ErrNoActiveJob
	}

	p.mu.Lock()
	if p.state != PollIdle {
		p.mu.Unlock()
		return domain.ErrAlreadyPolling
	}
	ctx, cancel := context.WithCancel(ctx)
	p.state = PollPolling
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.run(ctx, handle, onUpdate, onDone)
	return nil
}

// Stop halts the session without waiting for an in-flight fetch. A snapshot
// that resolves afterwards is discarded, never applied.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state != PollPolling {
		p.mu.Unlock()
		return
	}
	p.state = PollStopped
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (p *Poller) run(ctx context.Context, handle *model.JobHandle, onUpdate func(*model.JobSnapshot), onDone func(PollOutcome)) {
	defer close(p.done)
	ctx = logging.WithJobID(ctx, handle.JobID)

	timer := time.NewTimer(p.cfg.Interval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		snap, err := p.gen.GetJobStatus(ctx, handle)

		if p.State() == PollStopped {
			// Session ended while the fetch was in flight.
			return
		}

		if err != nil {
			// Transient: swallowed, counted toward the ceiling.
			metrics.IncPollAttempt("error")
			p.log.Debug().Err(err).Str("job_id", handle.JobID).Int("attempt", attempt).Msg("status fetch failed")
		} else {
			metrics.IncPollAttempt("ok")
			if onUpdate != nil {
				onUpdate(snap)
			}

			switch snap.Status {
			case model.JobStatusCompleted:
				p.finish(onDone, PollOutcome{Status: model.JobStatusCompleted, PlanID: snap.ResultPlanID})
				return
			case model.JobStatusFailed:
				msg := snap.ErrorMessage
				if msg == "" {
					msg = msgGenerationFailed
				}
				p.finish(onDone, PollOutcome{Status: model.JobStatusFailed, Message: msg})
				return
			case model.JobStatusCancelled:
				p.finish(onDone, PollOutcome{Status: model.JobStatusCancelled, Message: msgGenerationCancelled})
				return
			}
		}

		if attempt >= p.cfg.MaxAttempts {
			p.finish(onDone, PollOutcome{TimedOut: true, Message: msgGenerationTimedOut})
			return
		}

		timer.Reset(p.cfg.Interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// finish flips polling -> stopped and delivers the outcome, unless an explicit
// Stop won the race.
func (p *Poller) finish(onDone func(PollOutcome), out PollOutcome) {
	p.mu.Lock()
	if p.state != PollPolling {
		p.mu.Unlock()
		return
	}
	p.state = PollStopped
	p.mu.Unlock()

	if onDone != nil {
		onDone(out)
	}
}
