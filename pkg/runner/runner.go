package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/session"
)

// Runner handles the interactive loop of a run using a pluggable IOHandler.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdio.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Store is the persistence adapter. If nil, runs are ephemeral.
	Store     ports.StateStore
	Locker    ports.DistributedLocker
	SessionID string

	// Reloads triggers a reload of the flow; see WithReloads.
	Reloads <-chan struct{}

	sessions *session.Manager
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Store != nil {
		sopts := []session.Option{session.WithLogger(r.Logger)}
		if r.Locker != nil {
			sopts = append(sopts, session.WithLocker(r.Locker))
		}
		r.sessions = session.NewManager(r.Store, sopts...)
	}
	return r
}

// Run drives the loop until the user quits, the input ends, a terminal step
// without restart is reached, or ctx is canceled.
// If initial is nil the run is resumed from the store (when configured) or started fresh.
// The final state is returned in every case.
func (r *Runner) Run(ctx context.Context, engine *wayfinder.Engine, initial *domain.State) (domain.State, error) {
	state, err := r.resolveInitialState(ctx, engine, initial)
	if err != nil {
		return domain.State{}, err
	}

	var shown *domain.State
	for {
		view, err := engine.View(state)
		if err != nil {
			return state, fmt.Errorf("render error: %w", err)
		}

		if shown == nil || !shown.Equal(state) {
			if err := r.Handler.Show(ctx, view); err != nil {
				return state, fmt.Errorf("output error: %w", err)
			}
			s := state
			shown = &s
		}

		if view.Step.Kind == domain.KindTerminal && !view.Step.AllowRestart {
			r.Logger.Debug("run finished", "step", state.CurrentStepID)
			return state, nil
		}

		line, reloaded, err := r.read(ctx)
		if reloaded {
			engine, state = r.reload(ctx, engine, state)
			shown = nil
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return state, nil
			}
			if errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
				r.say(ctx, err.Error())
				continue
			}
			return state, err
		}

		cmd, err := ParseCommand(line, view)
		if err != nil {
			r.say(ctx, Explain(err))
			continue
		}

		switch cmd.Action {
		case CommandQuit:
			return state, nil
		case CommandHelp:
			r.say(ctx, helpText)
			continue
		}

		resp, err := Apply(engine, state, cmd)
		if err != nil {
			r.Logger.Debug("command rejected", "action", cmd.Action, "err", err)
			r.say(ctx, Explain(err))
			continue
		}

		if !resp.State.Equal(state) {
			if err := r.save(ctx, resp.State); err != nil {
				return state, fmt.Errorf("critical persistence error: %w", err)
			}
		}
		state = resp.State
	}
}

// read waits for a line, or for a reload signal, whichever comes first.
func (r *Runner) read(ctx context.Context) (string, bool, error) {
	if r.Reloads == nil {
		line, err := r.Handler.Input(ctx)
		return line, false, err
	}

	inputCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reloaded := make(chan struct{})
	go func() {
		select {
		case _, ok := <-r.Reloads:
			if ok {
				close(reloaded)
				cancel()
			}
		case <-inputCtx.Done():
		}
	}()

	line, err := r.Handler.Input(inputCtx)
	if err != nil && ctx.Err() == nil {
		select {
		case <-reloaded:
			return "", true, nil
		default:
		}
	}
	return line, false, err
}

func (r *Runner) reload(ctx context.Context, engine *wayfinder.Engine, state domain.State) (*wayfinder.Engine, domain.State) {
	next, err := engine.Reload(ctx)
	if err != nil {
		r.Logger.Warn("reload failed", "source", engine.Loader().Source(), "err", err)
		r.say(ctx, fmt.Sprintf("Flow changed but could not be loaded, keeping the previous version: %v", err))
		return engine, state
	}

	resumed, err := next.Resume(state)
	if err != nil {
		r.say(ctx, fmt.Sprintf("Flow reloaded but the run could not continue: %v", err))
		return engine, state
	}
	if err := r.save(ctx, resumed); err != nil {
		r.Logger.Warn("failed to persist resumed state", "err", err)
	}
	r.Logger.Info("flow reloaded", "source", next.Loader().Source())
	r.say(ctx, "Flow reloaded.")
	return next, resumed
}

func (r *Runner) resolveInitialState(ctx context.Context, engine *wayfinder.Engine, initial *domain.State) (domain.State, error) {
	if initial != nil {
		return *initial, nil
	}
	if r.sessions == nil || r.SessionID == "" {
		state, err := engine.Start("")
		if err != nil {
			return domain.State{}, fmt.Errorf("failed to create initial state: %w", err)
		}
		return state, nil
	}

	state, created, err := r.sessions.LoadOrStart(ctx, r.SessionID, func() (domain.State, error) {
		return engine.Start("")
	})
	if err != nil {
		return domain.State{}, fmt.Errorf("failed to open session %s: %w", r.SessionID, err)
	}
	if created {
		return state, nil
	}

	// The flow may have changed since the run was saved.
	resumed, err := engine.Resume(state)
	if err != nil {
		return domain.State{}, err
	}
	r.say(ctx, fmt.Sprintf("Resuming session %q.", r.SessionID))
	return resumed, nil
}

func (r *Runner) save(ctx context.Context, state domain.State) error {
	if r.sessions == nil || r.SessionID == "" {
		return nil
	}
	if err := r.sessions.Save(ctx, r.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", r.SessionID, "step_id", state.CurrentStepID)
	return nil
}

func (r *Runner) say(ctx context.Context, msg string) {
	if err := r.Handler.SystemOutput(ctx, msg); err != nil {
		r.Logger.Warn("system output failed", "err", err)
	}
}
