package ports

import "github.com/aretw0/wayfinder/pkg/domain"

// StatelessEngine defines the traversal operations over externally held state.
// This is the primary interface used by adapters (e.g., HTTP, MCP) that keep
// runs in a store or hand them to the client on every request.
type StatelessEngine interface {
	// Start creates the initial state. An empty id uses the graph's start step.
	Start(startStepID string) (domain.State, error)

	// Toggle selects or deselects a choice on the current step.
	Toggle(state domain.State, choiceID string) (domain.State, error)

	// Advance follows the outgoing connection chosen by the current step.
	// On error the given state is returned unchanged.
	Advance(state domain.State) (domain.State, error)

	// Back returns to the previous step. It is a no-op on an empty history.
	Back(state domain.State) domain.State

	// View projects the state for presentation.
	View(state domain.State) (domain.View, error)

	// Graph exposes the graph for introspection.
	Graph() *domain.Graph
}
