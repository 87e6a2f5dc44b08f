// Package metrics exports navigator lifecycle events as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector holds the navigator metrics. Attach it to a navigator through
// Hooks.
type Collector struct {
	NodeVisits         *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
	Recoveries         *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screengraph_node_visits_total",
				Help: "Number of times each screen was entered.",
			},
			[]string{"node"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screengraph_transitions_total",
				Help: "Executed edges by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		TransitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screengraph_transition_duration_seconds",
				Help:    "Time spent executing an edge, verification included.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		Recoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screengraph_recoveries_total",
				Help: "Recovery attempts by trigger and outcome.",
			},
			[]string{"trigger", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(c.NodeVisits, c.Transitions, c.TransitionDuration, c.Recoveries)
	}
	return c
}

// Hooks returns lifecycle hooks that feed the collector.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			c.NodeVisits.WithLabelValues(e.Node).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			kind := string(e.Kind)
			c.Transitions.WithLabelValues(kind, outcome(e.Err)).Inc()
			c.TransitionDuration.WithLabelValues(kind).Observe(e.Duration.Seconds())
		},
		OnRecovery: func(_ context.Context, e *domain.RecoveryEvent) {
			c.Recoveries.WithLabelValues(e.Trigger, outcome(e.Err)).Inc()
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
