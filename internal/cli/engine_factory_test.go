package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFlow = `
start: welcome
nodes:
  - id: welcome
    type: singleChoice
    data:
      content: Pick a language
      choices:
        - {id: go, label: Go}
        - {id: rust, label: Rust}
  - id: go
    type: terminal
    data:
      content: Gophers welcome
  - id: rust
    type: terminal
    data:
      content: Crabs welcome
edges:
  - source: welcome
    target: go
    sourceHandle: go
  - source: welcome
    target: rust
    sourceHandle: rust
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestResolveFlowPath(t *testing.T) {
	t.Run("File is returned as is", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"custom.yaml": testFlow})
		path := filepath.Join(dir, "custom.yaml")

		got, err := ResolveFlowPath(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("Directory prefers flow.yaml", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"flow.yaml": testFlow, "flow.json": "{}"})

		got, err := ResolveFlowPath(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "flow.yaml"), got)
	})

	t.Run("Directory falls back to flow.json", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"flow.json": "{}"})

		got, err := ResolveFlowPath(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "flow.json"), got)
	})

	t.Run("Directory without a flow", func(t *testing.T) {
		_, err := ResolveFlowPath(writeFiles(t, map[string]string{"notes.md": "#"}))
		assert.ErrorContains(t, err, "no flow file")
	})

	t.Run("Missing path", func(t *testing.T) {
		_, err := ResolveFlowPath(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "flow not found")
	})
}

func TestCreateEngine(t *testing.T) {
	dir := writeFiles(t, map[string]string{"flow.yaml": testFlow})

	t.Run("Local directory", func(t *testing.T) {
		engine, err := CreateEngine(context.Background(), dir, EngineOptions{})
		require.NoError(t, err)

		state, err := engine.Start("")
		require.NoError(t, err)
		assert.Equal(t, "welcome", state.CurrentStepID)
	})

	t.Run("Start override", func(t *testing.T) {
		engine, err := CreateEngine(context.Background(), dir, EngineOptions{Start: "rust"})
		require.NoError(t, err)

		state, err := engine.Start("")
		require.NoError(t, err)
		assert.Equal(t, "rust", state.CurrentStepID)
	})

	t.Run("Unknown start explains the fix", func(t *testing.T) {
		_, err := CreateEngine(context.Background(), dir, EngineOptions{Start: "ghost"})
		require.ErrorIs(t, err, domain.ErrMissingStep)
		assert.ErrorContains(t, err, "--start")
	})

	t.Run("Remote flow", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(testFlow))
		}))
		defer srv.Close()

		require.True(t, IsRemote(srv.URL+"/flow.yaml"))
		engine, err := CreateEngine(context.Background(), srv.URL+"/flow.yaml", EngineOptions{})
		require.NoError(t, err)
		assert.Len(t, engine.Graph().Steps(), 3)
	})
}
