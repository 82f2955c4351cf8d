package domain

import (
	"fmt"
)

// Connection is a directed edge between two steps.
// Outlet names the choice id (SingleChoice) or path id (MultiChoice) the
// connection leaves from. It is empty for Informational and Terminal steps.
type Connection struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Outlet string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
}

// Graph is an immutable, indexed flow graph.
// Adjacency is computed once at construction; lookups never scan all connections.
type Graph struct {
	steps       []Step
	connections []Connection
	start       string

	byID     map[string]Step
	outgoing map[string][]Connection
	incoming map[string][]Connection
}

// NewGraph indexes the given steps and connections.
// Step ids must be non-empty and unique. Connections are kept as given, even
// when they reference steps that do not exist: the engine reports those
// lazily as dangling targets.
func NewGraph(start string, steps []Step, connections []Connection) (*Graph, error) {
	g := &Graph{
		steps:       append([]Step(nil), steps...),
		connections: append([]Connection(nil), connections...),
		start:       start,
		byID:        make(map[string]Step, len(steps)),
		outgoing:    make(map[string][]Connection),
		incoming:    make(map[string][]Connection),
	}

	for _, s := range g.steps {
		if s == nil {
			return nil, fmt.Errorf("nil step in graph")
		}
		id := s.StepID()
		if id == "" {
			return nil, fmt.Errorf("step of kind %q has an empty id", s.Kind())
		}
		if _, dup := g.byID[id]; dup {
			return nil, fmt.Errorf("duplicate step id %q", id)
		}
		g.byID[id] = s
	}

	for _, c := range g.connections {
		g.outgoing[c.Source] = append(g.outgoing[c.Source], c)
		g.incoming[c.Target] = append(g.incoming[c.Target], c)
	}

	return g, nil
}

// Start returns the designated entry step id.
func (g *Graph) Start() string { return g.start }

// Step looks up a step by id.
func (g *Graph) Step(id string) (Step, bool) {
	s, ok := g.byID[id]
	return s, ok
}

// Steps returns all steps in declaration order.
func (g *Graph) Steps() []Step {
	return append([]Step(nil), g.steps...)
}

// Connections returns all connections in declaration order.
func (g *Graph) Connections() []Connection {
	return append([]Connection(nil), g.connections...)
}

// Outgoing returns the connections leaving stepID, in declaration order.
func (g *Graph) Outgoing(stepID string) []Connection {
	return g.outgoing[stepID]
}

// Incoming returns the connections entering stepID, in declaration order.
func (g *Graph) Incoming(stepID string) []Connection {
	return g.incoming[stepID]
}
