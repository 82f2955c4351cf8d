package dsl

import (
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	start string
	order []string
	nodes map[string]*StepBuilder
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*StepBuilder),
	}
}

// Start overrides the entry step. By default the first added step is the start.
func (b *Builder) Start(id string) *Builder {
	b.start = id
	return b
}

// Info adds an informational step.
func (b *Builder) Info(id, content string) *StepBuilder {
	return b.add(id, domain.KindInformational, content)
}

// Single adds a single-choice step.
func (b *Builder) Single(id, content string) *StepBuilder {
	return b.add(id, domain.KindSingleChoice, content)
}

// Multi adds a multi-choice step.
func (b *Builder) Multi(id, content string) *StepBuilder {
	return b.add(id, domain.KindMultiChoice, content)
}

// Terminal adds a terminal step.
func (b *Builder) Terminal(id, content string) *StepBuilder {
	return b.add(id, domain.KindTerminal, content)
}

// add creates a new step in the graph.
// If the step already exists, it returns the existing builder.
func (b *Builder) add(id string, kind domain.StepKind, content string) *StepBuilder {
	if sb, ok := b.nodes[id]; ok {
		return sb
	}
	sb := &StepBuilder{
		id:      id,
		kind:    kind,
		content: content,
	}
	b.nodes[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build compiles the graph.
func (b *Builder) Build() (*domain.Graph, error) {
	steps := make([]domain.Step, 0, len(b.order))
	var conns []domain.Connection

	for _, id := range b.order {
		sb := b.nodes[id]
		steps = append(steps, sb.step())
		conns = append(conns, sb.conns...)
	}

	start := b.start
	if start == "" && len(b.order) > 0 {
		start = b.order[0]
	}

	g, err := domain.NewGraph(start, steps, conns)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}

// MustBuild is like Build but panics on error. Intended for tests and fixtures.
func (b *Builder) MustBuild() *domain.Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
