package wayfinder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/internal/runtime"
	"github.com/aretw0/wayfinder/pkg/adapters/file"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Engine is the high-level entry point for the Wayfinder library.
// It binds one loaded flow to the traversal runtime. Engines are immutable:
// Reload returns a new Engine for the changed document.
type Engine struct {
	runtime *runtime.Engine
	loader  ports.FlowLoader
	doc     *document.Document
	cfg     config
	Name    string
}

type config struct {
	loader    ports.FlowLoader
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	startStep string
	now       func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*config)

// WithLifecycleHooks registers observability hooks. Repeated calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithLoader injects a custom FlowLoader, bypassing the default file loader.
func WithLoader(l ports.FlowLoader) Option {
	return func(c *config) {
		c.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithStartStep overrides the document's start step.
func WithStartStep(stepID string) Option {
	return func(c *config) {
		c.startStep = stepID
	}
}

// WithClock sets the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// New loads the flow document at path (JSON or YAML).
// If WithLoader is provided, path is only used as a display name.
func New(path string, opts ...Option) (*Engine, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.loader == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no custom loader is provided")
		}
		var loaderOpts []file.LoaderOption
		if cfg.logger != nil {
			loaderOpts = append(loaderOpts, file.WithLogger(cfg.logger))
		}
		cfg.loader = file.NewLoader(path, loaderOpts...)
	}
	return open(context.Background(), cfg, path)
}

// Open loads a flow through loader, honoring ctx (e.g. for remote catalogs).
func Open(ctx context.Context, loader ports.FlowLoader, opts ...Option) (*Engine, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.loader = loader
	return open(ctx, cfg, loader.Source())
}

// NewFromGraph wraps an already built graph, e.g. one produced by pkg/dsl.
func NewFromGraph(g *domain.Graph, opts ...Option) (*Engine, error) {
	loader, err := memory.NewFromGraph(g)
	if err != nil {
		return nil, err
	}
	return Open(context.Background(), loader, opts...)
}

func open(ctx context.Context, cfg config, name string) (*Engine, error) {
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	doc, err := cfg.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	graph, err := doc.Graph()
	if err != nil {
		return nil, err
	}
	if cfg.startStep != "" {
		if _, ok := graph.Step(cfg.startStep); !ok {
			return nil, &domain.TraversalError{StepID: cfg.startStep, Err: domain.ErrMissingStep}
		}
		graph, err = domain.NewGraph(cfg.startStep, graph.Steps(), graph.Connections())
		if err != nil {
			return nil, err
		}
		overridden := *doc
		overridden.Start = cfg.startStep
		doc = &overridden
	}
	if _, ok := graph.Step(graph.Start()); !ok {
		return nil, &domain.TraversalError{StepID: graph.Start(), Err: domain.ErrMissingStep}
	}

	eng := &Engine{
		loader: cfg.loader,
		doc:    doc,
		cfg:    cfg,
		Name:   displayName(name),
	}

	logger := cfg.logger
	if eng.Name != "" {
		logger = logger.With("flow", eng.Name)
	}
	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(logger),
		runtime.WithLifecycleHooks(cfg.hooks),
	}
	if cfg.now != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithClock(cfg.now))
	}
	eng.runtime = runtime.NewEngine(graph, runtimeOpts...)
	return eng, nil
}

func displayName(source string) string {
	if source == "" || source == "memory" {
		return source
	}
	base := filepath.Base(source)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Start creates the initial state. An empty id starts at the flow's start step.
func (e *Engine) Start(startStepID string) (domain.State, error) {
	return e.runtime.Start(startStepID)
}

// Toggle selects or deselects a choice on the current step.
func (e *Engine) Toggle(state domain.State, choiceID string) (domain.State, error) {
	return e.runtime.Toggle(state, choiceID)
}

// CanAdvance reports whether Advance would succeed from state.
func (e *Engine) CanAdvance(state domain.State) bool {
	return e.runtime.CanAdvance(state)
}

// Advance moves along the connection selected by the current step.
// On error, the returned state equals the given one.
func (e *Engine) Advance(state domain.State) (domain.State, error) {
	return e.runtime.Advance(state)
}

// Back returns to the previously visited step.
func (e *Engine) Back(state domain.State) domain.State {
	return e.runtime.Back(state)
}

// View projects the state for presentation.
func (e *Engine) View(state domain.State) (domain.View, error) {
	return e.runtime.View(state)
}

// IncomingNeighbors returns the steps that connect into stepID.
func (e *Engine) IncomingNeighbors(stepID string) []domain.Step {
	return e.runtime.IncomingNeighbors(stepID)
}

// OutgoingNeighbors returns the steps stepID connects to.
func (e *Engine) OutgoingNeighbors(stepID string) []domain.Step {
	return e.runtime.OutgoingNeighbors(stepID)
}

// Graph returns the indexed flow graph.
func (e *Engine) Graph() *domain.Graph {
	return e.runtime.Graph()
}

// Document returns the loaded document, including editor-only data.
func (e *Engine) Document() *document.Document {
	return e.doc
}

// Loader returns the FlowLoader the engine was built from.
func (e *Engine) Loader() ports.FlowLoader {
	return e.loader
}

// Watch returns a channel that signals when the underlying flow changes.
// Returns an error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("loader %q does not support watching", e.loader.Source())
}

// Reload reads the flow again and returns a new Engine with the same options.
func (e *Engine) Reload(ctx context.Context) (*Engine, error) {
	return open(ctx, e.cfg, e.loader.Source())
}

// Resume adapts a state from another version of the flow.
// States whose current step no longer exists are restarted; otherwise the
// state is kept, minus history entries that vanished and selections the
// current step no longer offers.
func (e *Engine) Resume(state domain.State) (domain.State, error) {
	g := e.Graph()
	step, ok := g.Step(state.CurrentStepID)
	if !ok {
		start := state.StartStepID
		if _, known := g.Step(start); !known {
			start = ""
		}
		return e.Start(start)
	}

	out := domain.State{
		StartStepID:   state.StartStepID,
		CurrentStepID: state.CurrentStepID,
	}
	if _, ok := g.Step(out.StartStepID); !ok {
		out.StartStepID = g.Start()
	}
	for _, id := range state.History {
		if _, ok := g.Step(id); ok {
			out.History = append(out.History, id)
		}
	}
	for _, id := range state.Normalized().Selections {
		if domain.HasChoice(step, id) {
			out.Selections = append(out.Selections, id)
		}
	}
	return out, nil
}
