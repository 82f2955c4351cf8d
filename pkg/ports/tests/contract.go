package tests

import (
	"context"
	"testing"

	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FlowLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.FlowLoader.
// The loader must serve a document whose start step is wantStart and which holds wantNodes nodes.
func FlowLoaderContractTest(t *testing.T, loader ports.FlowLoader, wantStart string, wantNodes int) {
	t.Helper()

	t.Run("Load", func(t *testing.T) {
		doc, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, wantStart, doc.StartID())
		assert.Len(t, doc.Nodes, wantNodes)

		g, err := doc.Graph()
		require.NoError(t, err)
		_, ok := g.Step(wantStart)
		assert.True(t, ok, "start step %q missing from graph", wantStart)
	})

	t.Run("Load is repeatable", func(t *testing.T) {
		first, err := loader.Load(context.Background())
		require.NoError(t, err)
		second, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Source", func(t *testing.T) {
		assert.NotEmpty(t, loader.Source())
	})
}
