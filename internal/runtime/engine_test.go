package runtime_test

import (
	"testing"

	"github.com/aretw0/wayfinder/internal/runtime"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlow builds the fixture used across engine tests:
//
//	start -> q (single: A->x, B->y)
//	x -> m (multi: P1{A}->x2, P2{A,B}->y2, P3{}->z)
//	y -> end (terminal, restart)
//	dead (terminal, no restart), lonely (informational, no exits)
func newFlow(t *testing.T) *domain.Graph {
	t.Helper()
	b := dsl.New()
	b.Info("start", "Welcome").Go("q")
	b.Single("q", "Pick").
		Choice("A", "Alpha", "x").
		Choice("B", "Beta", "y").
		Choice("C", "Gamma", "")
	b.Info("x", "X").Go("m")
	b.Info("y", "Y").Go("end")
	b.Multi("m", "Combine").
		Option("A", "A").
		Option("B", "B").
		Option("C", "C").
		Path("P1", "Only A", "x2", "A").
		Path("P2", "A and B", "y2", "A", "B").
		Path("P3", "Else", "z")
	b.Info("x2", "")
	b.Info("y2", "")
	b.Info("z", "")
	b.Terminal("end", "Bye").Restart()
	b.Terminal("dead", "The end")
	b.Info("lonely", "Nowhere to go")
	return b.MustBuild()
}

func TestEngine_Start(t *testing.T) {
	eng := runtime.NewEngine(newFlow(t))

	t.Run("Explicit", func(t *testing.T) {
		state, err := eng.Start("q")
		require.NoError(t, err)
		assert.Equal(t, domain.State{StartStepID: "q", CurrentStepID: "q"}, state)
	})

	t.Run("Graph Default", func(t *testing.T) {
		state, err := eng.Start("")
		require.NoError(t, err)
		assert.Equal(t, "start", state.CurrentStepID)
		assert.Empty(t, state.History)
		assert.Empty(t, state.Selections)
	})

	t.Run("Missing Step", func(t *testing.T) {
		_, err := eng.Start("ghost")
		assert.ErrorIs(t, err, domain.ErrMissingStep)
	})
}

func TestToggleSelection(t *testing.T) {
	s := domain.NewState("m")

	s = runtime.ToggleSelection(s, "B", false)
	s = runtime.ToggleSelection(s, "A", false)
	assert.Equal(t, []string{"A", "B"}, s.Selections)

	s = runtime.ToggleSelection(s, "A", false)
	assert.Equal(t, []string{"B"}, s.Selections)

	s = runtime.ToggleSelection(s, "C", true)
	assert.Equal(t, []string{"C"}, s.Selections)

	before := s.Clone()
	_ = runtime.ToggleSelection(s, "A", false)
	assert.Equal(t, before, s, "toggle must not mutate its input")
}

func TestToggleSelection_UnorderedInput(t *testing.T) {
	s := domain.State{StartStepID: "start", CurrentStepID: "m", Selections: []string{"B", "A"}}

	got := runtime.ToggleSelection(s, "A", false)
	assert.Equal(t, []string{"B"}, got.Selections)
	assert.False(t, got.Selected("A"))

	got = runtime.ToggleSelection(domain.State{CurrentStepID: "m", Selections: []string{"C", "A", "C"}}, "B", false)
	assert.Equal(t, []string{"A", "B", "C"}, got.Selections)

	assert.Equal(t, []string{"B", "A"}, s.Selections, "toggle must not mutate its input")
}

func TestEngine_Toggle(t *testing.T) {
	eng := runtime.NewEngine(newFlow(t))

	t.Run("Single Choice Is Exclusive", func(t *testing.T) {
		s := domain.NewState("q")
		s, err := eng.Toggle(s, "A")
		require.NoError(t, err)
		s, err = eng.Toggle(s, "B")
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, s.Selections)
	})

	t.Run("Multi Choice Accumulates", func(t *testing.T) {
		s := domain.NewState("m")
		s, _ = eng.Toggle(s, "A")
		s, _ = eng.Toggle(s, "B")
		assert.Equal(t, []string{"A", "B"}, s.Selections)
	})

	t.Run("Unknown Choice", func(t *testing.T) {
		s := domain.NewState("q")
		got, err := eng.Toggle(s, "Z")
		assert.ErrorIs(t, err, domain.ErrUnknownChoice)
		assert.Equal(t, s, got)
	})

	t.Run("Non Choice Step", func(t *testing.T) {
		_, err := eng.Toggle(domain.NewState("start"), "A")
		assert.ErrorIs(t, err, domain.ErrUnknownChoice)
	})
}

func TestEngine_SingleChoiceScenario(t *testing.T) {
	eng := runtime.NewEngine(newFlow(t))

	s := domain.NewState("q")
	s, err := eng.Toggle(s, "B")
	require.NoError(t, err)

	s, err = eng.Advance(s)
	require.NoError(t, err)
	assert.Equal(t, "y", s.CurrentStepID)
	assert.Equal(t, []string{"q"}, s.History)
	assert.Empty(t, s.Selections)
}

func TestEngine_AdvanceWithUnnormalizedSelections(t *testing.T) {
	eng := runtime.NewEngine(newFlow(t))

	t.Run("Duplicated Single Choice", func(t *testing.T) {
		s := domain.State{StartStepID: "start", CurrentStepID: "q", Selections: []string{"A", "A"}}
		next, err := eng.Advance(s)
		require.NoError(t, err)
		assert.Equal(t, "x", next.CurrentStepID)
	})

	t.Run("Unordered Multi Choice", func(t *testing.T) {
		s := domain.State{StartStepID: "start", CurrentStepID: "m", Selections: []string{"B", "A"}}
		next, err := eng.Advance(s)
		require.NoError(t, err)
		assert.Equal(t, "y2", next.CurrentStepID)
	})
}

func TestEngine_MultiChoiceScenario(t *testing.T) {
	eng := runtime.NewEngine(newFlow(t))
	base := domain.State{StartStepID: "start", CurrentStepID: "m", History: []string{"start", "q", "x"}}

	t.Run("Most Specific Path", func(t *testing.T) {
		s := runtime.ToggleSelection(base, "A", false)
		s = runtime.ToggleSelection(s, "B", false)
		next, err := eng.Advance(s)
		require.NoError(t, err)
		assert.Equal(t, "y2", next.CurrentStepID)
	})

	t.Run("Subset Path", func(t *testing.T) {
		s := runtime.ToggleSelection(base, "A", false)
		s = runtime.ToggleSelection(s, "C", false)
		next, err := eng.Advance(s)
		require.NoError(t, err)
		assert.Equal(t, "x2", next.CurrentStepID)
	})

	t.Run("Else Path", func(t *testing.T) {
		s := runtime.ToggleSelection(base, "C", false)
		next, err := eng.Advance(s)
		require.NoError(t, err)
		assert.Equal(t, "z", next.CurrentStepID)
		assert.Equal(t, []string{"start", "q", "x", "m"}, next.History)
	})

	t.Run("No Selection Is Blocked", func(t *testing.T) {
		assert.False(t, eng.CanAdvance(base))
		got, err := eng.Advance(base)
		assert.ErrorIs(t, err, domain.ErrSelectionRequired)
		assert.True(t, base.Equal(got))
	})
}

func TestEngine_AdvanceFailuresLeaveStateIntact(t *testing.T) {
	b := dsl.New()
	b.Single("q", "").Choice("A", "A", "ghost").Choice("B", "B", "")
	b.Multi("m", "").Option("A", "A").Path("P", "Needs A", "", "A")
	b.Multi("m2", "").Option("A", "A").Option("B", "B").Path("P", "Needs A", "end", "A")
	b.Info("lonely", "")
	b.Terminal("dead", "")
	b.Terminal("end", "")
	eng := runtime.NewEngine(b.MustBuild())

	tests := []struct {
		name    string
		state   domain.State
		wantErr error
	}{
		{"Informational Without Exit", domain.State{CurrentStepID: "lonely", History: []string{"x"}}, domain.ErrNoPathDefined},
		{"Single Choice Unwired", domain.State{CurrentStepID: "q", Selections: []string{"B"}}, domain.ErrNoPathDefined},
		{"Single Choice Dangling", domain.State{CurrentStepID: "q", Selections: []string{"A"}}, domain.ErrDanglingTarget},
		{"Single Choice Empty", domain.State{CurrentStepID: "q"}, domain.ErrSelectionRequired},
		{"Single Choice Foreign Selection", domain.State{CurrentStepID: "q", Selections: []string{"Z"}}, domain.ErrSelectionRequired},
		{"Path Wired To Nothing", domain.State{CurrentStepID: "m", Selections: []string{"A"}}, domain.ErrNoPathDefined},
		{"No Matching Path", domain.State{CurrentStepID: "m2", Selections: []string{"B"}}, domain.ErrNoPathDefined},
		{"Terminal Dead End", domain.State{CurrentStepID: "dead", History: []string{"q"}}, domain.ErrTerminalDeadEnd},
		{"Current Step Missing", domain.State{CurrentStepID: "ghost"}, domain.ErrMissingStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.state.Clone()
			got, err := eng.Advance(tt.state)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, got)
			assert.Equal(t, before, tt.state)

			var terr *domain.TraversalError
			assert.ErrorAs(t, err, &terr)
		})
	}
}

func TestEngine_TerminalRestart(t *testing.T) {
	eng := runtime.NewEngine(newFlow(t))
	s := domain.State{StartStepID: "start", CurrentStepID: "end", History: []string{"start", "q", "y"}}

	assert.True(t, eng.CanAdvance(s))
	next, err := eng.Advance(s)
	require.NoError(t, err)
	assert.Equal(t, domain.NewState("start"), next)
}

func TestEngine_Back(t *testing.T) {
	eng := runtime.NewEngine(newFlow(t))

	t.Run("Round Trip", func(t *testing.T) {
		s := domain.NewState("q")
		s, _ = eng.Toggle(s, "A")
		forward, err := eng.Advance(s)
		require.NoError(t, err)

		back := eng.Back(forward)
		assert.Equal(t, "q", back.CurrentStepID)
		assert.Empty(t, back.Selections)
		assert.Empty(t, back.History)
	})

	t.Run("Empty History Is No-Op", func(t *testing.T) {
		s := domain.State{StartStepID: "q", CurrentStepID: "q", Selections: []string{"A"}}
		got := eng.Back(s)
		assert.Equal(t, s, got)
	})

	t.Run("Does Not Mutate Input", func(t *testing.T) {
		s := domain.State{CurrentStepID: "m", History: []string{"start", "q", "x"}}
		got := eng.Back(s)
		assert.Equal(t, "x", got.CurrentStepID)
		assert.Equal(t, []string{"start", "q"}, got.History)
		assert.Equal(t, []string{"start", "q", "x"}, s.History)
	})
}

func TestEngine_CanAdvance(t *testing.T) {
	eng := runtime.NewEngine(newFlow(t))

	assert.True(t, eng.CanAdvance(domain.NewState("lonely")), "informational is always advanceable")
	assert.True(t, eng.CanAdvance(domain.NewState("end")))
	assert.False(t, eng.CanAdvance(domain.NewState("dead")))
	assert.False(t, eng.CanAdvance(domain.NewState("q")))
	assert.True(t, eng.CanAdvance(domain.State{CurrentStepID: "q", Selections: []string{"A"}}))
	assert.False(t, eng.CanAdvance(domain.NewState("ghost")))
}

func TestEngine_Neighbors(t *testing.T) {
	b := dsl.New()
	b.Single("q", "").
		Choice("A", "A", "x").
		Choice("B", "B", "x").
		Choice("C", "C", "ghost")
	b.Info("x", "").Go("q")
	b.Info("p", "").Go("x")
	eng := runtime.NewEngine(b.MustBuild())

	ids := func(steps []domain.Step) []string {
		out := []string{}
		for _, s := range steps {
			out = append(out, s.StepID())
		}
		return out
	}

	assert.Equal(t, []string{"x"}, ids(eng.OutgoingNeighbors("q")), "deduplicated by step, dangling skipped")
	assert.Equal(t, []string{"q", "p"}, ids(eng.IncomingNeighbors("x")))
	assert.Empty(t, eng.IncomingNeighbors("p"))
}

func TestEngine_View(t *testing.T) {
	eng := runtime.NewEngine(newFlow(t))
	s := domain.State{StartStepID: "start", CurrentStepID: "q", Selections: []string{"B"}, History: []string{"start"}}

	v, err := eng.View(s)
	require.NoError(t, err)
	assert.Equal(t, domain.KindSingleChoice, v.Step.Kind)
	require.Len(t, v.Step.Choices, 3)
	assert.False(t, v.Step.Choices[0].Selected)
	assert.True(t, v.Step.Choices[1].Selected)
	assert.True(t, v.CanAdvance)
	assert.True(t, v.CanGoBack)
	assert.Equal(t, []domain.StepRef{{ID: "start", Kind: domain.KindInformational, Content: "Welcome"}}, v.Incoming)
	assert.Len(t, v.Outgoing, 2)

	_, err = eng.View(domain.NewState("ghost"))
	assert.ErrorIs(t, err, domain.ErrMissingStep)
}

func TestEngine_Hooks(t *testing.T) {
	var events []domain.EventType
	record := func(e *domain.StepEvent) { events = append(events, e.Type) }
	eng := runtime.NewEngine(newFlow(t), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnStepEnter:     record,
		OnStepLeave:     record,
		OnBack:          record,
		OnRestart:       record,
		OnAdvanceFailed: record,
	}))

	s, _ := eng.Start("y")
	s, _ = eng.Advance(s) // y -> end
	s, _ = eng.Advance(s) // restart
	_, _ = eng.Advance(domain.NewState("lonely"))
	_ = eng.Back(domain.State{CurrentStepID: "q", History: []string{"start"}})

	assert.Equal(t, []domain.EventType{
		domain.EventStepEnter,
		domain.EventStepLeave, domain.EventStepEnter,
		domain.EventStepLeave, domain.EventRestart, domain.EventStepEnter,
		domain.EventAdvanceFailed,
		domain.EventBack,
	}, events)
	assert.Equal(t, "y", s.CurrentStepID)
}
