package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/wayfinder/internal/presentation/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "onboarding")

	out := buf.String()
	assert.Contains(t, out, `\_/\_/`)
	assert.Contains(t, out, "flow: onboarding")
	assert.NotContains(t, out, "\x1b[", "a buffer is not a color terminal")
}

func TestNewRenderer(t *testing.T) {
	render, err := tui.NewRenderer(0)
	require.NoError(t, err)

	out, err := render("# Welcome\n\nPick **one** option.")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome")
	assert.Contains(t, out, "one")
}
