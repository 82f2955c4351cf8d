package wayfinder_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flowJSON = `{
  "nodes": [
    {"id": "start", "type": "informational", "position": {"x": 0, "y": 0}, "data": {"content": "Hello World"}},
    {"id": "pick", "type": "singleChoice", "data": {"content": "Pick", "choices": [{"id": "a", "label": "A"}, {"id": "b", "label": "B"}]}},
    {"id": "end", "type": "terminal", "data": {"content": "Bye", "allowRestart": true}}
  ],
  "edges": [
    {"id": "e1", "source": "start", "target": "pick"},
    {"id": "e2", "source": "pick", "target": "end", "sourceHandle": "a"}
  ]
}`

func writeFlow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hello.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFacade_Integration(t *testing.T) {
	var entered []string
	eng, err := wayfinder.New(writeFlow(t, flowJSON), wayfinder.WithLifecycleHooks(domain.LifecycleHooks{
		OnStepEnter: func(e *domain.StepEvent) { entered = append(entered, e.StepID) },
	}))
	require.NoError(t, err)
	assert.Equal(t, "hello", eng.Name)

	state, err := eng.Start("")
	require.NoError(t, err)
	assert.Equal(t, "start", state.CurrentStepID)

	view, err := eng.View(state)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", view.Step.Content)
	assert.True(t, view.CanAdvance)

	state, err = eng.Advance(state)
	require.NoError(t, err)

	_, err = eng.Advance(state)
	assert.ErrorIs(t, err, domain.ErrSelectionRequired)

	state, err = eng.Toggle(state, "b")
	require.NoError(t, err)
	same, err := eng.Advance(state)
	assert.ErrorIs(t, err, domain.ErrNoPathDefined, "b is not wired")
	assert.True(t, same.Equal(state))

	state, _ = eng.Toggle(state, "a")
	state, err = eng.Advance(state)
	require.NoError(t, err)
	assert.Equal(t, "end", state.CurrentStepID)

	state, err = eng.Advance(state)
	require.NoError(t, err)
	assert.Equal(t, domain.NewState("start"), state)

	assert.Equal(t, []string{"start", "pick", "end", "start"}, entered)
	require.NotNil(t, eng.Document().Nodes[0].Position, "editor data survives loading")
}

func TestFacade_Options(t *testing.T) {
	path := writeFlow(t, flowJSON)

	eng, err := wayfinder.New(path, wayfinder.WithStartStep("pick"))
	require.NoError(t, err)
	state, err := eng.Start("")
	require.NoError(t, err)
	assert.Equal(t, "pick", state.CurrentStepID)

	assert.Equal(t, "pick", eng.Document().Start)

	_, err = wayfinder.New(path, wayfinder.WithStartStep("ghost"))
	require.ErrorIs(t, err, domain.ErrMissingStep)
	var terr *domain.TraversalError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "ghost", terr.StepID)

	_, err = wayfinder.New("")
	assert.Error(t, err)

	_, err = wayfinder.New(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFacade_StartOverrideKeepsLoaderDocument(t *testing.T) {
	loader, err := memory.NewFromBytes([]byte(flowJSON), document.FormatJSON)
	require.NoError(t, err)

	_, err = wayfinder.Open(context.Background(), loader, wayfinder.WithStartStep("pick"))
	require.NoError(t, err)

	eng, err := wayfinder.Open(context.Background(), loader)
	require.NoError(t, err)
	state, err := eng.Start("")
	require.NoError(t, err)
	assert.Equal(t, "start", state.CurrentStepID)
}

func TestFacade_EmptyFlow(t *testing.T) {
	_, err := wayfinder.New(writeFlow(t, `{"nodes":[],"edges":[]}`))
	assert.ErrorIs(t, err, domain.ErrMissingStep)
}

func TestFacade_ReloadAndResume(t *testing.T) {
	b := dsl.New()
	b.Info("start", "Hi").Go("q")
	b.Multi("q", "Pick").Option("x", "X").Option("y", "Y").Path("all", "All", "end")
	b.Terminal("end", "Bye")

	loader, err := memory.NewFromGraph(b.MustBuild())
	require.NoError(t, err)

	eng, err := wayfinder.Open(context.Background(), loader)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := eng.Watch(ctx)
	require.NoError(t, err)

	state, _ := eng.Start("")
	state, _ = eng.Advance(state)
	state, _ = eng.Toggle(state, "x")
	state, _ = eng.Toggle(state, "y")

	// Drop choice y from the document.
	doc := eng.Document()
	doc.Nodes[1].Data.Choices = doc.Nodes[1].Data.Choices[:1]
	require.NoError(t, loader.Update(doc))

	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected reload signal")
	}

	next, err := eng.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, domain.ChoicesOf(mustStep(t, next, "q")), 1)

	resumed, err := next.Resume(state)
	require.NoError(t, err)
	assert.Equal(t, "q", resumed.CurrentStepID)
	assert.Equal(t, []string{"x"}, resumed.Selections)
	assert.Equal(t, []string{"start"}, resumed.History)

	messy := domain.State{StartStepID: "start", CurrentStepID: "q", Selections: []string{"y", "x", "x"}}
	resumed, err = eng.Resume(messy)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, resumed.Selections)

	// A state pointing at a vanished step restarts.
	gone := domain.State{StartStepID: "start", CurrentStepID: "deleted", History: []string{"start"}}
	restarted, err := next.Resume(gone)
	require.NoError(t, err)
	assert.Equal(t, domain.NewState("start"), restarted)
}

func TestFacade_WatchUnsupported(t *testing.T) {
	b := dsl.New()
	b.Terminal("only", "Done")
	eng, err := wayfinder.NewFromGraph(b.MustBuild())
	require.NoError(t, err)

	_, err = eng.Watch(context.Background())
	assert.NoError(t, err, "memory loader supports watching")

	eng, err = wayfinder.Open(context.Background(), staticLoader{})
	require.NoError(t, err)
	_, err = eng.Watch(context.Background())
	assert.Error(t, err)
}

type staticLoader struct{}

func (staticLoader) Load(context.Context) (*document.Document, error) {
	return document.DecodeBytes([]byte(`{"nodes":[{"id":"a","type":"terminal","data":{}}],"edges":[]}`), "")
}

func (staticLoader) Source() string { return "static" }

func mustStep(t *testing.T, eng *wayfinder.Engine, id string) domain.Step {
	t.Helper()
	s, ok := eng.Graph().Step(id)
	require.True(t, ok)
	return s
}
