// Package metrics exposes Prometheus metrics for the dispatch runtime.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the dispatch runtime metrics.
type Collector struct {
	registry *prometheus.Registry

	// Dispatch metrics
	DispatchDecisions *prometheus.CounterVec
	DispatchScore     prometheus.Histogram

	// Accounting metrics
	TaskCompletions *prometheus.CounterVec
	FeedbackEvents  prometheus.Counter

	// Assignment metrics
	Assignments *prometheus.CounterVec

	// Persistence metrics
	FlushDuration prometheus.Histogram
	FlushFailures prometheus.Counter
}

// NewCollector creates a collector with its own registry so repeated
// construction (tests, embedders) never double-registers.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		DispatchDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_decisions_total",
				Help: "Dispatch decisions by role and outcome",
			},
			[]string{"role", "outcome"},
		),

		DispatchScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dispatch_winning_score",
				Help:    "Score of the selected agent per dispatch",
				Buckets: []float64{10, 25, 50, 75, 100, 125, 150},
			},
		),

		TaskCompletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "task_completions_total",
				Help: "Task completion events by verb and success",
			},
			[]string{"verb", "success"},
		),

		FeedbackEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "feedback_events_total",
				Help: "Critic feedback events recorded",
			},
		),

		Assignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "role_assignments_total",
				Help: "Role assignments by role",
			},
			[]string{"role"},
		),

		FlushDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "persistence_flush_duration_seconds",
				Help:    "Duration of collection flushes to the store",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),

		FlushFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "persistence_flush_failures_total",
				Help: "Collection flushes that failed and were swallowed",
			},
		),
	}

	c.registry.MustRegister(
		c.DispatchDecisions,
		c.DispatchScore,
		c.TaskCompletions,
		c.FeedbackEvents,
		c.Assignments,
		c.FlushDuration,
		c.FlushFailures,
	)

	return c
}

// Handler returns the HTTP handler serving this collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
