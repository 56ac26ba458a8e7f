// Package observability wires Prometheus metrics and OpenTelemetry tracing
// into the tick loop, grounded on the teacher's
// internal/observability/metrics.go and tracing.go: a single struct of
// promauto-registered collectors plus a thin Tracer wrapper around an SDK
// TracerProvider. Scaled down to the handful of signals the tick loop
// actually produces rather than the teacher's full gateway surface.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the runtime registers. The tick loop
// updates TicksTotal, LLMRequestDuration and ActionsDispatched;
// BackgroundTaskRuns and ConnectorErrors are registered but nothing in
// this module increments them, so they always export zero.
type Metrics struct {
	// TicksTotal counts completed tick-loop iterations.
	TicksTotal prometheus.Counter

	// LLMRequestDuration measures the Ask round-trip per tick, in seconds.
	LLMRequestDuration prometheus.Histogram

	// ActionsDispatched counts dispatched actions by action type.
	// Labels: action
	ActionsDispatched *prometheus.CounterVec

	// BackgroundTaskRuns is the counter for background task executions by
	// outcome; the scheduler does not increment it.
	// Labels: task, outcome (success|error)
	BackgroundTaskRuns *prometheus.CounterVec

	// ConnectorErrors is the counter for connector dispatch failures by
	// action and failure classification; the dispatcher does not
	// increment it.
	// Labels: action, failure
	ConnectorErrors *prometheus.CounterVec
}

// NewMetrics constructs and registers every collector with the default
// Prometheus registry. Call once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		TicksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "om1agent_ticks_total",
			Help: "Total number of completed tick-loop iterations.",
		}),
		LLMRequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "om1agent_llm_request_duration_seconds",
			Help:    "Latency of the LLM Adapter's Ask call per tick.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		ActionsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "om1agent_actions_dispatched_total",
			Help: "Total number of actions handed to the dispatcher, by action type.",
		}, []string{"action"}),
		BackgroundTaskRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "om1agent_background_task_runs_total",
			Help: "Total number of background task executions, by task name and outcome.",
		}, []string{"task", "outcome"}),
		ConnectorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "om1agent_connector_errors_total",
			Help: "Total number of connector dispatch failures, by action and failure classification.",
		}, []string{"action", "failure"}),
	}
}

// ObserveLLMDuration records d as one LLM request's latency.
func (m *Metrics) ObserveLLMDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	m.LLMRequestDuration.Observe(d.Seconds())
}
