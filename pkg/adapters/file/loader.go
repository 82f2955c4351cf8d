package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 150 * time.Millisecond

// Loader implements ports.FlowLoader and ports.Watchable for a document on disk.
type Loader struct {
	path   string
	format document.Format
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFormat forces the document format instead of inferring it from the extension.
func WithFormat(f document.Format) LoaderOption {
	return func(l *Loader) { l.format = f }
}

// WithLogger reports watcher errors.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader for path. Unknown extensions are sniffed.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{
		path:   path,
		format: document.FormatFromPath(path),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source implements ports.FlowLoader.
func (l *Loader) Source() string { return l.path }

// Load reads and decodes the document.
func (l *Loader) Load(_ context.Context) (*document.Document, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow %s: %w", l.path, err)
	}
	doc, err := document.DecodeBytes(data, l.format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return doc, nil
}

// Watch signals when the document changes on disk.
// The parent directory is watched because most editors save by writing a
// temp file and renaming it over the original, which drops file-level watches.
// Bursts of events are coalesced into a single signal.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	abs, err := filepath.Abs(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", l.path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer w.Close()

		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case <-fire:
				fire = nil
				select {
				case out <- struct{}{}:
				default:
				}
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounceDelay)
				} else {
					timer.Reset(debounceDelay)
				}
				fire = timer.C
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("flow watcher error", "path", l.path, "err", err)
			}
		}
	}()

	return out, nil
}
