package domain

import (
	"slices"
)

// State is the runtime position of a single run.
// It is a value type: transitions take a State and return a new one, never
// mutating the slices of their input.
type State struct {
	// StartStepID is the entry step, used when a terminal step restarts the run.
	StartStepID string `json:"start_step_id"`

	// CurrentStepID is the step currently presented to the user.
	CurrentStepID string `json:"current_step_id"`

	// Selections holds the choice ids selected at the current step. The engine
	// keeps them sorted; states from elsewhere are normalized on use.
	Selections []string `json:"selections,omitempty"`

	// History is the stack of previously visited step ids (top = last element).
	History []string `json:"history,omitempty"`
}

// NewState creates a clean state positioned at startStepID.
func NewState(startStepID string) State {
	return State{
		StartStepID:   startStepID,
		CurrentStepID: startStepID,
	}
}

// CanGoBack reports whether the history stack is non-empty.
func (s State) CanGoBack() bool {
	return len(s.History) > 0
}

// Selected reports whether choiceID is part of the current selections.
func (s State) Selected(choiceID string) bool {
	return slices.Contains(s.Selections, choiceID)
}

// Normalized returns a deep copy whose selections are sorted and free of
// duplicates. States decoded from clients may carry selections in any order.
func (s State) Normalized() State {
	s = s.Clone()
	if len(s.Selections) > 0 {
		slices.Sort(s.Selections)
		s.Selections = slices.Compact(s.Selections)
	}
	return s
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	s.Selections = slices.Clone(s.Selections)
	s.History = slices.Clone(s.History)
	return s
}

// Equal reports whether two states are structurally equal.
// Nil and empty slices are considered equal, and selections compare as sets.
func (s State) Equal(o State) bool {
	return s.StartStepID == o.StartStepID &&
		s.CurrentStepID == o.CurrentStepID &&
		slices.Equal(s.Normalized().Selections, o.Normalized().Selections) &&
		slices.Equal(s.History, o.History)
}

// SelectionSet is a set of choice ids.
type SelectionSet map[string]struct{}

// NewSelectionSet builds a set from the given ids, dropping duplicates.
func NewSelectionSet(ids ...string) SelectionSet {
	set := make(SelectionSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s SelectionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// ContainsAll reports whether every id is a member of the set.
func (s SelectionSet) ContainsAll(ids []string) bool {
	for _, id := range ids {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the members in ascending order.
func (s SelectionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
