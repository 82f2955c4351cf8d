package runner

import (
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Response combines state and its projection for rich clients (Web, MCP, etc).
// This encapsulates the common pattern of: act -> view -> return both.
type Response struct {
	State domain.State `json:"state"`
	View  domain.View  `json:"view"`
	Error string       `json:"error,omitempty"`
}

// Apply performs cmd and projects the resulting state.
// On failure the response still carries the untouched state and its view, so
// clients can re-render, and the engine error is returned alongside.
func Apply(engine ports.StatelessEngine, state domain.State, cmd Command) (*Response, error) {
	next, err := apply(engine, state, cmd)
	if err != nil {
		next = state
	}

	view, verr := engine.View(next)
	if verr != nil {
		return &Response{State: next, Error: verr.Error()}, verr
	}
	resp := &Response{State: next, View: view}
	if err != nil {
		resp.Error = Explain(err)
	}
	return resp, err
}

// ViewOf projects state without acting on it.
func ViewOf(engine ports.StatelessEngine, state domain.State) (*Response, error) {
	view, err := engine.View(state)
	if err != nil {
		return &Response{State: state, Error: err.Error()}, err
	}
	return &Response{State: state, View: view}, nil
}

func apply(engine ports.StatelessEngine, state domain.State, cmd Command) (domain.State, error) {
	switch cmd.Action {
	case CommandToggle:
		return engine.Toggle(state, cmd.ChoiceID)
	case CommandAdvance:
		return engine.Advance(state)
	case CommandBack:
		return engine.Back(state), nil
	case CommandRestart:
		return engine.Start(state.StartStepID)
	}
	return state, fmt.Errorf("%w: %q cannot be applied", ErrInvalidCommand, cmd.Action)
}
