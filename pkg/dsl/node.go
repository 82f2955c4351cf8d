package dsl

import (
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// StepBuilder provides a fluent API for configuring a step.
// Methods that do not apply to the step's kind are ignored at Build time
// (choices on an informational step are simply dropped).
type StepBuilder struct {
	id           string
	kind         domain.StepKind
	content      string
	choices      []domain.Choice
	paths        []domain.Path
	allowRestart bool
	conns        []domain.Connection
}

// Go adds an unconditional connection to target.
func (s *StepBuilder) Go(target string) *StepBuilder {
	return s.connect("", target)
}

// Choice adds a choice and, when target is non-empty, wires it to target.
func (s *StepBuilder) Choice(id, label, target string) *StepBuilder {
	s.choices = append(s.choices, domain.Choice{ID: id, Label: label})
	if target != "" {
		s.connect(id, target)
	}
	return s
}

// Option adds a choice without wiring it. Used for multi-choice steps where
// connections leave from paths, not choices.
func (s *StepBuilder) Option(id, label string) *StepBuilder {
	s.choices = append(s.choices, domain.Choice{ID: id, Label: label})
	return s
}

// Path adds a multi-choice output path requiring the given choices and, when
// target is non-empty, wires it to target. No requirements makes it the else path.
func (s *StepBuilder) Path(id, label, target string, requires ...string) *StepBuilder {
	s.paths = append(s.paths, domain.Path{ID: id, Label: label, Requires: requires})
	if target != "" {
		s.connect(id, target)
	}
	return s
}

// On wires an existing outlet (choice or path id) to target.
func (s *StepBuilder) On(outlet, target string) *StepBuilder {
	return s.connect(outlet, target)
}

// Restart allows a terminal step to restart the flow.
func (s *StepBuilder) Restart() *StepBuilder {
	s.allowRestart = true
	return s
}

func (s *StepBuilder) connect(outlet, target string) *StepBuilder {
	s.conns = append(s.conns, domain.Connection{
		ID:     fmt.Sprintf("%s-%d", s.id, len(s.conns)+1),
		Source: s.id,
		Target: target,
		Outlet: outlet,
	})
	return s
}

// step returns the underlying domain.Step.
func (s *StepBuilder) step() domain.Step {
	header := domain.StepHeader{ID: s.id, Content: s.content}
	switch s.kind {
	case domain.KindSingleChoice:
		return domain.SingleChoice{StepHeader: header, Choices: s.choices}
	case domain.KindMultiChoice:
		return domain.MultiChoice{StepHeader: header, Choices: s.choices, Paths: s.paths}
	case domain.KindTerminal:
		return domain.Terminal{StepHeader: header, AllowRestart: s.allowRestart}
	default:
		return domain.Informational{StepHeader: header}
	}
}
