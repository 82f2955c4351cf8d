package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/adapters/file"
	"github.com/aretw0/wayfinder/pkg/document"
	contract "github.com/aretw0/wayfinder/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flowYAML = `
start: hello
nodes:
  - id: hello
    type: informational
    data:
      content: Hello
  - id: bye
    type: terminal
    data:
      content: Bye
edges:
  - id: e1
    source: hello
    target: bye
`

func writeFlow(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileLoader_Contract(t *testing.T) {
	loader := file.NewLoader(writeFlow(t, "flow.yaml", flowYAML))
	contract.FlowLoaderContractTest(t, loader, "hello", 2)
}

func TestFileLoader_JSONAndSniff(t *testing.T) {
	body := `{"nodes":[{"id":"start","type":"terminal","data":{"content":"Only"}}],"edges":[]}`

	doc, err := file.NewLoader(writeFlow(t, "flow.json", body)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "start", doc.StartID())

	doc, err = file.NewLoader(writeFlow(t, "flow.txt", body)).Load(context.Background())
	require.NoError(t, err, "unknown extensions are sniffed")
	assert.Len(t, doc.Nodes, 1)

	_, err = file.NewLoader(writeFlow(t, "flow.txt", flowYAML), file.WithFormat(document.FormatJSON)).Load(context.Background())
	assert.Error(t, err, "forced format wins over sniffing")
}

func TestFileLoader_Errors(t *testing.T) {
	_, err := file.NewLoader(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeFlow(t, "bad.json", `{"nodes":[{"id":"a","type":"nope","data":{}}],"edges":[]}`)
	_, err = file.NewLoader(path).Load(context.Background())
	var derr *document.DecodeError
	assert.ErrorAs(t, err, &derr)
	assert.Contains(t, err.Error(), path)
}

func TestFileLoader_Watch(t *testing.T) {
	path := writeFlow(t, "flow.yaml", flowYAML)
	loader := file.NewLoader(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x"), 0o644))
	select {
	case <-ch:
		t.Fatal("unexpected signal for unrelated file")
	case <-time.After(400 * time.Millisecond):
	}

	updated := flowYAML + "\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case _, ok := <-ch:
		require.True(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("expected change notification")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}
