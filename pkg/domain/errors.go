package domain

import (
	"errors"
	"fmt"
)

// Traversal errors. Every failed transition leaves the input State untouched.
var (
	// ErrMissingStep is returned when a referenced step id is absent from the graph.
	ErrMissingStep = errors.New("missing step")

	// ErrNoPathDefined is returned when no outgoing connection matches the current selections.
	ErrNoPathDefined = errors.New("no path defined")

	// ErrDanglingTarget is returned when a matched connection points at a nonexistent step.
	ErrDanglingTarget = errors.New("dangling target")

	// ErrTerminalDeadEnd is returned when advancing past a terminal step that does not allow restart.
	ErrTerminalDeadEnd = errors.New("terminal dead end")

	// ErrSelectionRequired is returned when advancing a choice step without a valid selection.
	ErrSelectionRequired = errors.New("selection required")

	// ErrUnknownChoice is returned when toggling a choice the current step does not offer.
	ErrUnknownChoice = errors.New("unknown choice")
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// TraversalError attaches the step context to a traversal failure.
type TraversalError struct {
	StepID string // Step that was current when the failure happened
	Target string // Resolved target or offending id, if any
	Err    error  // One of the sentinel errors above
}

func (e *TraversalError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("step %q: %v: %q", e.StepID, e.Err, e.Target)
	}
	return fmt.Sprintf("step %q: %v", e.StepID, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err stems from a malformed flow rather
// than from the user's selections.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingStep) || errors.Is(err, ErrDanglingTarget)
}
