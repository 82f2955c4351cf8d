package validator_test

import (
	"testing"

	"github.com/aretw0/wayfinder/internal/validator"
	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(issues []validator.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Code+":"+i.StepID)
	}
	return out
}

func TestValidate_CleanGraph(t *testing.T) {
	b := dsl.New()
	b.Info("start", "Welcome").Go("role")
	b.Single("role", "Role?").
		Choice("dev", "Developer", "stack").
		Choice("ops", "Operations", "done")
	b.Multi("stack", "Stacks?").
		Option("go", "Go").
		Path("go", "Go", "done", "go").
		Path("else", "Other", "done")
	b.Terminal("done", "Bye").Restart()

	report := validator.Validate(b.MustBuild())
	assert.Empty(t, report.Issues)
	assert.NoError(t, report.Err(true))
}

func TestValidate_Issues(t *testing.T) {
	steps := []domain.Step{
		domain.Informational{StepHeader: domain.StepHeader{ID: "start"}},
		domain.Informational{StepHeader: domain.StepHeader{ID: "dead"}},
		domain.SingleChoice{
			StepHeader: domain.StepHeader{ID: "pick"},
			Choices:    []domain.Choice{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
		},
		domain.MultiChoice{
			StepHeader: domain.StepHeader{ID: "multi"},
			Choices:    []domain.Choice{{ID: "x", Label: "X"}},
			Paths:      []domain.Path{{ID: "p", Label: "P", Requires: []string{"x"}}},
		},
		domain.Terminal{StepHeader: domain.StepHeader{ID: "end"}},
		domain.Terminal{StepHeader: domain.StepHeader{ID: "island"}},
	}
	conns := []domain.Connection{
		{ID: "e1", Source: "start", Target: "pick"},
		{ID: "e2", Source: "start", Target: "multi"},
		{ID: "e3", Source: "pick", Target: "end", Outlet: "a"},
		{ID: "e4", Source: "pick", Target: "multi", Outlet: "a"},
		{ID: "e5", Source: "pick", Target: "end", Outlet: "zzz"},
		{ID: "e6", Source: "multi", Target: "ghost", Outlet: "p"},
		{ID: "e7", Source: "end", Target: "start"},
		{ID: "e8", Source: "dead", Target: "dead2"},
	}
	g, err := domain.NewGraph("start", steps, conns)
	require.NoError(t, err)

	report := validator.Validate(g)

	assert.ElementsMatch(t, []string{
		"dangling_edge:multi",
		"dangling_edge:dead",
		"unknown_outlet:pick",
	}, codes(report.Errors()))

	assert.ElementsMatch(t, []string{
		"ambiguous_exit:start",
		"duplicate_outlet:pick",
		"unwired_outlet:pick",
		"no_else_path:multi",
		"terminal_exit:end",
		"unreachable:dead",
		"unreachable:island",
	}, codes(report.Warnings()))

	err = report.Err(false)
	var verr *validator.Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 3)
	assert.Contains(t, err.Error(), "3 validation errors")
	assert.Len(t, report.Err(true).(*validator.Error).Issues, 10)
}

func TestValidate_DeadEndAndMissingStart(t *testing.T) {
	g, err := domain.NewGraph("nope",
		[]domain.Step{domain.Informational{StepHeader: domain.StepHeader{ID: "only"}}},
		nil,
	)
	require.NoError(t, err)

	report := validator.Validate(g)
	assert.Equal(t, []string{"missing_start:", "dead_end:only"}, codes(report.Issues))
	assert.Equal(t, `error [missing_start] start step "nope" does not exist`, report.Issues[0].String())
}

func TestValidateDocument(t *testing.T) {
	doc, err := document.DecodeBytes([]byte(`{"nodes":[{"id":"start","type":"terminal","data":{"content":"Hi"}}],"edges":[]}`), document.FormatJSON)
	require.NoError(t, err)

	report, err := validator.ValidateDocument(doc)
	require.NoError(t, err)
	assert.Empty(t, report.Issues)

	bad := &document.Document{Nodes: []document.Node{{ID: "x", Type: "bogus"}}}
	_, err = validator.ValidateDocument(bad)
	var derr *document.DecodeError
	assert.ErrorAs(t, err, &derr)
}
