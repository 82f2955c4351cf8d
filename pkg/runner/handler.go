package runner

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Show presents the current step.
	Show(ctx context.Context, view domain.View) error

	// Input reads one command line from the user.
	// It returns ctx.Err() when ctx is canceled while waiting and io.EOF when
	// the input stream ends.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (hints, errors, status).
	// This is distinct from step content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms step content before it is printed.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
