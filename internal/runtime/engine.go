package runtime

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Engine is the traversal state machine over a single, immutable graph.
// It holds no per-run data: every transition takes a State and returns a new
// one, so one Engine may serve many runs concurrently.
type Engine struct {
	graph  *domain.Graph
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine bound to graph.
func NewEngine(graph *domain.Graph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:  graph,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine traverses.
func (e *Engine) Graph() *domain.Graph {
	return e.graph
}

// Start creates the initial state at startStepID.
// An empty startStepID falls back to the graph's designated start step.
func (e *Engine) Start(startStepID string) (domain.State, error) {
	if startStepID == "" {
		startStepID = e.graph.Start()
	}
	step, ok := e.graph.Step(startStepID)
	if !ok {
		return domain.State{}, &domain.TraversalError{StepID: startStepID, Err: domain.ErrMissingStep}
	}

	e.logger.Debug("run started", "step", startStepID)
	e.emit(e.hooks.OnStepEnter, domain.EventStepEnter, step)
	return domain.NewState(startStepID), nil
}

// ToggleSelection updates the selections of state.
// When exclusive, the selection set becomes exactly {choiceID}; otherwise
// choiceID is added if absent and removed if present.
func ToggleSelection(state domain.State, choiceID string, exclusive bool) domain.State {
	next := state.Normalized()
	if exclusive {
		next.Selections = []string{choiceID}
		return next
	}

	i, found := slices.BinarySearch(next.Selections, choiceID)
	if found {
		next.Selections = slices.Delete(next.Selections, i, i+1)
	} else {
		next.Selections = slices.Insert(next.Selections, i, choiceID)
	}
	return next
}

// Toggle applies ToggleSelection with the exclusivity implied by the current
// step's kind. The choice must be offered by the current step.
func (e *Engine) Toggle(state domain.State, choiceID string) (domain.State, error) {
	step, ok := e.graph.Step(state.CurrentStepID)
	if !ok {
		return state, &domain.TraversalError{StepID: state.CurrentStepID, Err: domain.ErrMissingStep}
	}
	if !domain.HasChoice(step, choiceID) {
		return state, &domain.TraversalError{StepID: step.StepID(), Target: choiceID, Err: domain.ErrUnknownChoice}
	}
	return ToggleSelection(state, choiceID, step.Kind() == domain.KindSingleChoice), nil
}

// CanAdvance reports whether Advance may succeed from state.
// It is a gating hint for presentation layers; Advance re-validates on its own.
func (e *Engine) CanAdvance(state domain.State) bool {
	step, ok := e.graph.Step(state.CurrentStepID)
	if !ok {
		return false
	}
	switch s := step.(type) {
	case domain.Informational:
		return true
	case domain.Terminal:
		return s.AllowRestart
	case domain.SingleChoice, domain.MultiChoice:
		return len(state.Selections) > 0
	}
	return false
}

// Advance performs the forward transition from state.
// On failure the returned state is the input state, unchanged.
func (e *Engine) Advance(state domain.State) (domain.State, error) {
	step, ok := e.graph.Step(state.CurrentStepID)
	if !ok {
		return state, e.fail(nil, &domain.TraversalError{StepID: state.CurrentStepID, Err: domain.ErrMissingStep})
	}

	var (
		conn domain.Connection
		err  error
	)
	switch s := step.(type) {
	case domain.Terminal:
		if err := resolveTerminal(s); err != nil {
			return state, e.fail(step, &domain.TraversalError{StepID: s.ID, Err: err})
		}
		return e.restart(state, step)
	case domain.Informational:
		conn, err = resolveInformational(e.graph.Outgoing(s.ID))
	case domain.SingleChoice:
		conn, err = resolveSingleChoice(s, e.graph.Outgoing(s.ID), state.Normalized().Selections)
	case domain.MultiChoice:
		conn, err = resolveMultiChoice(s, e.graph.Outgoing(s.ID), state.Normalized().Selections)
	default:
		err = fmt.Errorf("unsupported step kind %q", step.Kind())
	}
	if err != nil {
		return state, e.fail(step, &domain.TraversalError{StepID: step.StepID(), Err: err})
	}

	target, ok := e.graph.Step(conn.Target)
	if !ok {
		return state, e.fail(step, &domain.TraversalError{StepID: step.StepID(), Target: conn.Target, Err: domain.ErrDanglingTarget})
	}

	next := domain.State{
		StartStepID:   state.StartStepID,
		CurrentStepID: target.StepID(),
		History:       append(slices.Clone(state.History), state.CurrentStepID),
	}

	e.logger.Debug("advanced", "from", step.StepID(), "to", target.StepID(), "outlet", conn.Outlet)
	e.emit(e.hooks.OnStepLeave, domain.EventStepLeave, step)
	e.emit(e.hooks.OnStepEnter, domain.EventStepEnter, target)
	return next, nil
}

// restart resets the run to its start step.
func (e *Engine) restart(state domain.State, from domain.Step) (domain.State, error) {
	startID := state.StartStepID
	if startID == "" {
		startID = e.graph.Start()
	}
	start, ok := e.graph.Step(startID)
	if !ok {
		return state, e.fail(from, &domain.TraversalError{StepID: from.StepID(), Target: startID, Err: domain.ErrMissingStep})
	}

	e.logger.Debug("restarted", "from", from.StepID(), "to", startID)
	e.emit(e.hooks.OnStepLeave, domain.EventStepLeave, from)
	e.emit(e.hooks.OnRestart, domain.EventRestart, start)
	e.emit(e.hooks.OnStepEnter, domain.EventStepEnter, start)
	return domain.NewState(startID), nil
}

// Back pops the history stack. It is a no-op when history is empty.
func (e *Engine) Back(state domain.State) domain.State {
	if len(state.History) == 0 {
		return state
	}

	top := len(state.History) - 1
	next := domain.State{
		StartStepID:   state.StartStepID,
		CurrentStepID: state.History[top],
		History:       slices.Clone(state.History[:top]),
	}

	e.logger.Debug("back", "from", state.CurrentStepID, "to", next.CurrentStepID)
	if step, ok := e.graph.Step(next.CurrentStepID); ok {
		e.emit(e.hooks.OnBack, domain.EventBack, step)
	}
	return next
}

// IncomingNeighbors returns the distinct existing steps with a connection into stepID.
func (e *Engine) IncomingNeighbors(stepID string) []domain.Step {
	return e.neighbors(e.graph.Incoming(stepID), func(c domain.Connection) string { return c.Source })
}

// OutgoingNeighbors returns the distinct existing steps stepID connects to.
func (e *Engine) OutgoingNeighbors(stepID string) []domain.Step {
	return e.neighbors(e.graph.Outgoing(stepID), func(c domain.Connection) string { return c.Target })
}

func (e *Engine) neighbors(conns []domain.Connection, end func(domain.Connection) string) []domain.Step {
	seen := make(map[string]bool, len(conns))
	var out []domain.Step
	for _, c := range conns {
		id := end(c)
		if seen[id] {
			continue
		}
		seen[id] = true
		if s, ok := e.graph.Step(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// View projects state for presentation layers.
func (e *Engine) View(state domain.State) (domain.View, error) {
	step, ok := e.graph.Step(state.CurrentStepID)
	if !ok {
		return domain.View{}, &domain.TraversalError{StepID: state.CurrentStepID, Err: domain.ErrMissingStep}
	}

	v := domain.View{
		Step:       domain.NewStepView(step, state),
		Selections: slices.Clone(state.Selections),
		CanAdvance: e.CanAdvance(state),
		CanGoBack:  state.CanGoBack(),
		Incoming:   []domain.StepRef{},
		Outgoing:   []domain.StepRef{},
	}
	if v.Selections == nil {
		v.Selections = []string{}
	}
	for _, s := range e.IncomingNeighbors(step.StepID()) {
		v.Incoming = append(v.Incoming, domain.RefOf(s))
	}
	for _, s := range e.OutgoingNeighbors(step.StepID()) {
		v.Outgoing = append(v.Outgoing, domain.RefOf(s))
	}
	return v, nil
}

func (e *Engine) fail(step domain.Step, err error) error {
	e.logger.Warn("advance failed", "err", err)
	if e.hooks.OnAdvanceFailed != nil {
		evt := &domain.StepEvent{Timestamp: e.now(), Type: domain.EventAdvanceFailed, Err: err}
		if step != nil {
			evt.StepID, evt.StepKind = step.StepID(), step.Kind()
		}
		e.hooks.OnAdvanceFailed(evt)
	}
	return err
}

func (e *Engine) emit(hook func(*domain.StepEvent), typ domain.EventType, step domain.Step) {
	if hook == nil {
		return
	}
	hook(&domain.StepEvent{
		Timestamp: e.now(),
		Type:      typ,
		StepID:    step.StepID(),
		StepKind:  step.Kind(),
	})
}
