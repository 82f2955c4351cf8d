package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter     EventType = "step_enter"
	EventStepLeave     EventType = "step_leave"
	EventBack          EventType = "back"
	EventRestart       EventType = "restart"
	EventAdvanceFailed EventType = "advance_failed"
)

// StepEvent describes a single engine transition.
type StepEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	StepID    string    `json:"step_id"`
	StepKind  StepKind  `json:"step_kind,omitempty"`
	// Err is set for EventAdvanceFailed.
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously inside the transition; they must not block.
type LifecycleHooks struct {
	OnStepEnter     func(*StepEvent)
	OnStepLeave     func(*StepEvent)
	OnBack          func(*StepEvent)
	OnRestart       func(*StepEvent)
	OnAdvanceFailed func(*StepEvent)
}

// Merge returns hooks that invoke h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	chain := func(a, b func(*StepEvent)) func(*StepEvent) {
		switch {
		case a == nil:
			return b
		case b == nil:
			return a
		}
		return func(e *StepEvent) {
			a(e)
			b(e)
		}
	}
	return LifecycleHooks{
		OnStepEnter:     chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:     chain(h.OnStepLeave, other.OnStepLeave),
		OnBack:          chain(h.OnBack, other.OnBack),
		OnRestart:       chain(h.OnRestart, other.OnRestart),
		OnAdvanceFailed: chain(h.OnAdvanceFailed, other.OnAdvanceFailed),
	}
}
