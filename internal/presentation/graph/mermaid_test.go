package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *domain.Graph {
	b := dsl.New()
	b.Info("start", "Welcome").Go("role")
	b.Single("role", "Role?").
		Choice("dev", "Developer", "stack").
		Choice("ops", `The "ops" team`, "done")
	b.Multi("stack", "Stacks?").
		Option("go", "Go").
		Option("k8s", "Kubernetes").
		Path("both", "Both", "done", "go", "k8s").
		Path("else", "Other", "done")
	b.Terminal("done", "Bye").Restart()
	return b.MustBuild()
}

func TestGenerateMermaid(t *testing.T) {
	got := graph.GenerateMermaid(sampleGraph(), nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{"Header", []string{"graph TD\n"}},
		{"Start Step Shape", []string{`start(("start"))`}},
		{"SingleChoice Shape", []string{`role{"role"}`}},
		{"MultiChoice Shape", []string{`stack{{"stack"}}`}},
		{"Terminal Shape", []string{`done(["done"])`}},
		{"Unlabeled Edge", []string{"start --> role"}},
		{"Choice Label", []string{`role -- "Developer" --> stack`}},
		{"Label Escaping", []string{`role -- "The 'ops' team" --> done`}},
		{"Path Labels", []string{`stack -- "Both" --> done`, `stack -- "Other" --> done`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
	assert.NotContains(t, got, "Overlay")
}

func TestGenerateMermaid_DanglingAndSanitized(t *testing.T) {
	g, err := domain.NewGraph("intro-1",
		[]domain.Step{
			domain.Informational{StepHeader: domain.StepHeader{ID: "intro-1"}},
			domain.SingleChoice{
				StepHeader: domain.StepHeader{ID: "flows/pick.v2"},
				Choices:    []domain.Choice{{ID: "a", Label: "A"}},
			},
		},
		[]domain.Connection{
			{Source: "intro-1", Target: "flows/pick.v2"},
			{Source: "flows/pick.v2", Target: "ghost", Outlet: "a"},
		},
	)
	require.NoError(t, err)

	got := graph.GenerateMermaid(g, nil)
	assert.Contains(t, got, `intro_1(("intro-1"))`)
	assert.Contains(t, got, `flows_pick_v2{"flows/pick.v2"}`)
	assert.Contains(t, got, `flows_pick_v2 -. "A" .-> ghost`)
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	state := domain.State{
		StartStepID:   "start",
		CurrentStepID: "stack",
		History:       []string{"start", "role", "start", "role", "removed"},
	}

	got := graph.GenerateMermaid(sampleGraph(), graph.OverlayOf(state))
	assert.Contains(t, got, "classDef visited")
	assert.Contains(t, got, "classDef current")
	assert.Equal(t, 1, strings.Count(got, "class start visited;"))
	assert.Equal(t, 1, strings.Count(got, "class role visited;"))
	assert.Contains(t, got, "class stack current;")
	assert.NotContains(t, got, "removed", "unknown steps are not styled")
}
