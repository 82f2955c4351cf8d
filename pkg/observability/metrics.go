package observability

import (
	"errors"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wayfinder"

// Metrics holds the Prometheus collectors of a running host.
type Metrics struct {
	StepVisits       *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	AdvanceFailures  *prometheus.CounterVec
	SessionsStarted  prometheus.Counter
	SessionsFinished prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg skips registration, which keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_visits_total",
			Help:      "Number of times a step became current.",
		}, []string{"step_id", "kind"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Engine transitions by type.",
		}, []string{"type"}),
		AdvanceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advance_failures_total",
			Help:      "Rejected advance attempts by reason.",
		}, []string{"step_id", "reason"}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Runs created by hosts.",
		}),
		SessionsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Runs that reached a terminal step.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.StepVisits, m.Transitions, m.AdvanceFailures, m.SessionsStarted, m.SessionsFinished)
	}
	return m
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	count := func(e *domain.StepEvent) {
		m.Transitions.WithLabelValues(string(e.Type)).Inc()
	}
	return domain.LifecycleHooks{
		OnStepEnter: func(e *domain.StepEvent) {
			count(e)
			m.StepVisits.WithLabelValues(e.StepID, string(e.StepKind)).Inc()
			if e.StepKind == domain.KindTerminal {
				m.SessionsFinished.Inc()
			}
		},
		OnStepLeave: count,
		OnBack:      count,
		OnRestart:   count,
		OnAdvanceFailed: func(e *domain.StepEvent) {
			count(e)
			m.AdvanceFailures.WithLabelValues(e.StepID, FailureReason(e.Err)).Inc()
		},
	}
}

// FailureReason maps an engine error to a short, bounded label value.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrSelectionRequired):
		return "selection_required"
	case errors.Is(err, domain.ErrNoPathDefined):
		return "no_path"
	case errors.Is(err, domain.ErrTerminalDeadEnd):
		return "terminal_dead_end"
	case errors.Is(err, domain.ErrDanglingTarget):
		return "dangling_target"
	case errors.Is(err, domain.ErrMissingStep):
		return "missing_step"
	}
	return "other"
}
