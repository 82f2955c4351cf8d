package domain

import (
	"slices"
)

// StateDiff represents the changes between two traversal states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	StartStepID   *string       `json:"start_step_id,omitempty"`
	CurrentStepID *string       `json:"current_step_id,omitempty"`
	Selections    *[]string     `json:"selections,omitempty"`
	History       *HistoryDelta `json:"history,omitempty"`
}

// HistoryDelta describes how the history stack moved.
// Pushed holds ids appended on top; Popped counts entries removed from the top.
type HistoryDelta struct {
	Pushed []string `json:"pushed,omitempty"`
	Popped int      `json:"popped,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// It returns nil when the states are structurally equal.
func Diff(oldState, newState State) *StateDiff {
	if oldState.Equal(newState) {
		return nil
	}

	diff := &StateDiff{}
	if oldState.StartStepID != newState.StartStepID {
		id := newState.StartStepID
		diff.StartStepID = &id
	}
	if oldState.CurrentStepID != newState.CurrentStepID {
		id := newState.CurrentStepID
		diff.CurrentStepID = &id
	}
	oldSel, newSel := oldState.Normalized().Selections, newState.Normalized().Selections
	if !slices.Equal(oldSel, newSel) {
		sel := newSel
		if sel == nil {
			sel = []string{}
		}
		diff.Selections = &sel
	}
	diff.History = diffHistory(oldState.History, newState.History)

	return diff
}

func diffHistory(prev, next []string) *HistoryDelta {
	// Longest common prefix
	n := 0
	for n < len(prev) && n < len(next) && prev[n] == next[n] {
		n++
	}
	if n == len(prev) && n == len(next) {
		return nil
	}
	return &HistoryDelta{
		Pushed: slices.Clone(next[n:]),
		Popped: len(prev) - n,
	}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d == nil || (d.StartStepID == nil && d.CurrentStepID == nil && d.Selections == nil && d.History == nil)
}
