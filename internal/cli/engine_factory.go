package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/adapters/catalog"
	"github.com/aretw0/wayfinder/pkg/adapters/file"
	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/observability"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// flowCandidates are looked up, in order, when a directory is given.
var flowCandidates = []string{"flow.yaml", "flow.yml", "flow.json"}

// ResolveFlowPath accepts a flow file or a directory holding one of the
// conventional flow file names.
func ResolveFlowPath(path string) (string, error) {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("flow not found: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range flowCandidates {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no flow file in %s (looked for %v)", path, flowCandidates)
}

// EngineOptions controls createEngine.
type EngineOptions struct {
	Start   string
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// IsRemote reports whether path names a flow served over HTTP.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// NewLoader picks the loader for a local flow path or a remote URL.
func NewLoader(path string, logger *slog.Logger) (ports.FlowLoader, error) {
	if IsRemote(path) {
		return catalog.NewURLLoader(path), nil
	}
	flow, err := ResolveFlowPath(path)
	if err != nil {
		return nil, err
	}
	var opts []file.LoaderOption
	if logger != nil {
		opts = append(opts, file.WithLogger(logger))
	}
	return file.NewLoader(flow, opts...), nil
}

// LoadDocument reads a flow without building a graph, so broken flows can
// still be validated or exported.
func LoadDocument(ctx context.Context, path string) (*document.Document, error) {
	loader, err := NewLoader(path, nil)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}

// CreateEngine initializes an engine with the standard CLI conventions:
// a lifecycle audit trail at debug level, plus metrics when requested.
func CreateEngine(ctx context.Context, path string, opts EngineOptions) (*wayfinder.Engine, error) {
	engineOpts := []wayfinder.Option{
		wayfinder.WithStartStep(opts.Start),
	}
	if opts.Logger != nil {
		engineOpts = append(engineOpts,
			wayfinder.WithLogger(opts.Logger),
			wayfinder.WithLifecycleHooks(observability.LogHooks(opts.Logger)),
		)
	}
	if opts.Metrics != nil {
		engineOpts = append(engineOpts, wayfinder.WithLifecycleHooks(opts.Metrics.Hooks()))
	}

	loader, err := NewLoader(path, opts.Logger)
	if err != nil {
		return nil, err
	}
	engine, err := wayfinder.Open(ctx, loader, engineOpts...)
	if err != nil {
		if errors.Is(err, domain.ErrMissingStep) {
			return nil, fmt.Errorf("error initializing engine (set \"start\" in the document or pass --start): %w", err)
		}
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
