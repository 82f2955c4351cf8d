package cli

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/wayfinder/internal/presentation/tui"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/runner"
)

// Execute runs a flow interactively until it finishes, the user quits or
// the process is interrupted.
func Execute(opts RunOptions) error {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	logger := runLogger(opts.Config.Log, opts.Debug)

	engine, err := CreateEngine(sigCtx, opts.FlowPath, EngineOptions{Start: opts.Start, Logger: logger})
	if err != nil {
		return err
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(in, out)
	} else {
		var textOpts []runner.TextHandlerOption
		if runner.IsTerminal(out) {
			if render, err := tui.NewRenderer(tui.DefaultWordWrap); err == nil {
				textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
			} else {
				logger.Warn("markdown rendering disabled", "err", err)
			}
		}
		if !opts.NoBanner {
			tui.PrintBanner(out, engine.Name)
		}
		handler = runner.NewTextHandler(in, out, textOpts...)
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
	}

	sessionID := opts.SessionID
	if sessionID == "" && opts.Watch {
		sessionID = WatchSessionID(opts.FlowPath)
	}
	if sessionID != "" {
		p, err := OpenPersistence(opts.Config.Session)
		if err != nil {
			return err
		}
		defer p.Close()

		if opts.Fresh {
			if err := ResetSession(sigCtx, p.Store, sessionID); err != nil {
				return err
			}
		}
		runnerOpts = append(runnerOpts, runner.WithStore(p.Store), runner.WithSessionID(sessionID))
		if p.Locker != nil {
			runnerOpts = append(runnerOpts, runner.WithLocker(p.Locker))
		}
	}

	if opts.Watch {
		if IsRemote(opts.FlowPath) {
			return errors.New("--watch needs a local flow file")
		}
		reloads, err := engine.Watch(sigCtx)
		if err != nil {
			return fmt.Errorf("failed to watch flow: %w", err)
		}
		runnerOpts = append(runnerOpts, runner.WithReloads(reloads))
		if !opts.JSON {
			printSystemMessage(out, "Watching %s (session %q).", engine.Name, sessionID)
		}
	}

	final, err := runner.NewRunner(runnerOpts...).Run(sigCtx, engine, nil)
	if !opts.JSON {
		logCompletion(out, final.CurrentStepID, err, sigCtx.Signal())
	}
	return handleExecutionError(err)
}

// WatchSessionID derives a stable session id from the flow location so that
// repeated watch runs of the same file resume where they stopped.
func WatchSessionID(flowPath string) string {
	if abs, err := filepath.Abs(flowPath); err == nil {
		flowPath = abs
	}
	sum := sha256.Sum256([]byte(flowPath))
	return fmt.Sprintf("watch-%x", sum[:6])
}

// ResetSession removes a stored session. A missing session is not an error.
func ResetSession(ctx context.Context, store ports.StateStore, sessionID string) error {
	if err := store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to reset session %q: %w", sessionID, err)
	}
	return nil
}
