package stub

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"training-plan-wizard/internal/domain/model"
)

// Server is a fake generation backend for development and end-to-end runs.
// Jobs progress on wall time: every StepDuration the job gains roughly 10%,
// completing once it reaches 100.
type Server struct {
	stepDuration time.Duration
	log          *zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*stubJob
	rnd  *rand.Rand
}

type stubJob struct {
	userID    string
	createdAt time.Time
	cancelled bool
	failWith  string
	planID    string
}

func NewServer(stepDuration time.Duration, log *zerolog.Logger) *Server {
	if stepDuration <= 0 {
		stepDuration = time.Second
	}
	return &Server{
		stepDuration: stepDuration,
		log:          log,
		jobs:         make(map[string]*stubJob),
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Router builds the chi router with the three backend endpoints plus
// /metrics and /health.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLog)

	r.Post("/api/v1/training-plans/generate", s.handleCreate)
	r.Get("/api/v1/training-plans/jobs/{jobID}", s.handleStatus)
	r.Post("/api/v1/training-plans/jobs/{jobID}/cancel", s.handleCancel)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return r
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		model.PlanRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusUnauthorized, "missing user_id")
		return
	}
	if errs := req.PlanRequest.Validate(); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, errs[0])
		return
	}

	now := time.Now()
	jobID := ulid.MustNew(ulid.Timestamp(now), s.rnd).String()
	planID := ulid.MustNew(ulid.Timestamp(now), s.rnd).String()

	s.mu.Lock()
	s.jobs[jobID] = &stubJob{userID: req.UserID, createdAt: now, planID: planID}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"job_id":     jobID,
		"status":     string(model.JobStatusPending),
		"created_at": now,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	userID := r.URL.Query().Get("user_id")

	s.mu.Lock()
	job, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok || job.userID != userID {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	snap := s.snapshot(job)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	var body struct {
		UserID string `json:"user_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	job, ok := s.jobs[jobID]
	if ok && job.userID == body.UserID {
		job.cancelled = true
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "cancellation requested"})
}

// snapshot derives the job's current state from elapsed wall time.
func (s *Server) snapshot(job *stubJob) *model.JobSnapshot {
	if job.cancelled {
		return &model.JobSnapshot{Status: model.JobStatusCancelled}
	}
	if job.failWith != "" {
		return &model.JobSnapshot{Status: model.JobStatusFailed, ErrorMessage: job.failWith}
	}

	elapsed := time.Since(job.createdAt)
	progress := int(elapsed/s.stepDuration) * 10
	switch {
	case progress <= 0:
		return &model.JobSnapshot{Status: model.JobStatusPending, Progress: 0}
	case progress >= 100:
		return &model.JobSnapshot{
			Status:       model.JobStatusCompleted,
			Progress:     100,
			ResultPlanID: job.planID,
		}
	default:
		return &model.JobSnapshot{Status: model.JobStatusProcessing, Progress: progress}
	}
}

// FailJob flips a running job into a failed state with the given message.
// Exposed for e2e runs that exercise the failure path.
func (s *Server) FailJob(jobID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.failWith = message
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
