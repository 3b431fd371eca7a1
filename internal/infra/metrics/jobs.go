package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(pollAttemptsTotal, generationJobsTotal, generationDurationSeconds)
}

var pollAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_poll_attempts_total",
		Help: "Total status poll attempts, labeled by result.",
	},
	[]string{"result"}, // 'ok', 'error'
)

var generationJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_jobs_total",
		Help: "Generation jobs reaching a terminal outcome.",
	},
	[]string{"outcome"}, // 'completed', 'failed', 'cancelled', 'timeout'
)

var generationDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "generation_duration_seconds",
		Help:    "Wall time from submission to terminal outcome.",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 90, 120, 180},
	},
	[]string{"outcome"},
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncPollAttempt(result string) {
	pollAttemptsTotal.WithLabelValues(norm(result)).Inc()
}

func IncJobOutcome(outcome string) {
	generationJobsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveGenerationDuration(outcome string, seconds float64) {
	generationDurationSeconds.WithLabelValues(norm(outcome)).Observe(seconds)
}
