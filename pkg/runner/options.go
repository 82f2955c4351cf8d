package runner

import (
	"log/slog"

	"github.com/aretw0/wayfinder/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the StateStore for persistence.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLocker coordinates access to the run with other processes sharing the store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(r *Runner) {
		r.Locker = locker
	}
}

// WithSessionID sets the session ID for persistence.
// This is required if WithStore is used; without it runs are ephemeral.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithReloads makes the runner reload the flow whenever ch fires.
// ch is typically the result of Engine.Watch.
func WithReloads(ch <-chan struct{}) Option {
	return func(r *Runner) {
		r.Reloads = ch
	}
}
