package ports

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/document"
)

// FlowLoader defines how hosts obtain a flow document.
// This allows the source (local file, remote catalog, editor memory) to be decoupled.
type FlowLoader interface {
	// Load reads and structurally checks the whole document.
	Load(ctx context.Context) (*document.Document, error)

	// Source describes where the document comes from (path, URL, "memory").
	// It is used for logs and banners only.
	Source() string
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying document changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
