package runtime

import (
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Per-kind resolvers. Each one is a pure function of the step, its outgoing
// connections and the current selections. They deliberately share no code:
// informational steps follow an unconditional edge, single-choice steps an
// exact outlet, multi-choice steps a matched path.

// resolveInformational follows the first outgoing connection, if any.
func resolveInformational(outgoing []domain.Connection) (domain.Connection, error) {
	if len(outgoing) == 0 {
		return domain.Connection{}, domain.ErrNoPathDefined
	}
	return outgoing[0], nil
}

// resolveSingleChoice follows the connection leaving from the selected choice.
func resolveSingleChoice(step domain.SingleChoice, outgoing []domain.Connection, selections []string) (domain.Connection, error) {
	if len(selections) != 1 || !domain.HasChoice(step, selections[0]) {
		return domain.Connection{}, domain.ErrSelectionRequired
	}
	for _, c := range outgoing {
		if c.Outlet == selections[0] {
			return c, nil
		}
	}
	return domain.Connection{}, domain.ErrNoPathDefined
}

// resolveMultiChoice matches the selections against the step's paths and
// follows the connection wired to the winning path.
// A matched path that is wired to nothing is reported as ErrNoPathDefined.
func resolveMultiChoice(step domain.MultiChoice, outgoing []domain.Connection, selections []string) (domain.Connection, error) {
	if len(selections) == 0 {
		return domain.Connection{}, domain.ErrSelectionRequired
	}
	path, ok := MatchPath(step.Paths, domain.NewSelectionSet(selections...))
	if !ok {
		return domain.Connection{}, domain.ErrNoPathDefined
	}
	for _, c := range outgoing {
		if c.Outlet == path.ID {
			return c, nil
		}
	}
	return domain.Connection{}, domain.ErrNoPathDefined
}

// resolveTerminal reports whether advancing past the terminal step is allowed.
// A permitted advance restarts the run; there is no connection to follow.
func resolveTerminal(step domain.Terminal) error {
	if !step.AllowRestart {
		return domain.ErrTerminalDeadEnd
	}
	return nil
}
