package document_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "nodes": [
    {"id": "q", "type": "singleChoice", "position": {"x": 10, "y": 20},
     "data": {"content": "Pick one", "choices": [{"id": "a", "label": "A"}, {"id": "b", "label": "B"}]}},
    {"id": "m", "type": "multiChoice", "position": {"x": 10, "y": 120},
     "data": {"content": "Pick many",
              "choices": [{"id": "x", "label": "X"}, {"id": "y", "label": "Y"}],
              "outputPaths": [
                {"id": "both", "label": "Both", "requiredChoiceIds": ["x", "y"]},
                {"id": "else", "label": "Else", "requiredChoiceIds": []}
              ]}},
    {"id": "info", "type": "informational", "data": {"content": "Read me"}},
    {"id": "end", "type": "terminal", "data": {"content": "Bye", "allowRestart": true}}
  ],
  "edges": [
    {"id": "e1", "source": "q", "target": "m", "sourceHandle": "a"},
    {"id": "e2", "source": "q", "target": "info", "sourceHandle": "b"},
    {"id": "e3", "source": "m", "target": "end", "sourceHandle": "both"},
    {"id": "e4", "source": "m", "target": "info", "sourceHandle": "else"},
    {"id": "e5", "source": "info", "target": "end"}
  ],
  "start": "q"
}`

func TestDecode_JSON(t *testing.T) {
	doc, err := document.DecodeBytes([]byte(sampleJSON), document.FormatJSON)
	require.NoError(t, err)

	g, err := doc.Graph()
	require.NoError(t, err)

	assert.Equal(t, "q", g.Start())
	require.Len(t, g.Steps(), 4)

	m, ok := g.Step("m")
	require.True(t, ok)
	multi, ok := m.(domain.MultiChoice)
	require.True(t, ok, "expected MultiChoice, got %T", m)
	assert.Equal(t, "Pick many", multi.Text())
	require.Len(t, multi.Paths, 2)
	assert.Equal(t, []string{"x", "y"}, multi.Paths[0].Requires)
	assert.Empty(t, multi.Paths[1].Requires)

	end, _ := g.Step("end")
	assert.True(t, end.(domain.Terminal).AllowRestart)

	out := g.Outgoing("q")
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Outlet)
	assert.Equal(t, "m", out[0].Target)
}

func TestDecode_RoundTrip(t *testing.T) {
	for _, format := range []document.Format{document.FormatJSON, document.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			original, err := document.DecodeBytes([]byte(sampleJSON), document.FormatJSON)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, original.Encode(&buf, format))

			decoded, err := document.Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, original, decoded)
		})
	}
}

func TestDecode_Sniff(t *testing.T) {
	yamlDoc := `
nodes:
  - id: start
    type: informational
    data:
      content: Hello
  - id: end
    type: terminal
    data:
      content: Bye
edges:
  - source: start
    target: end
`
	doc, err := document.DecodeBytes([]byte(yamlDoc), "")
	require.NoError(t, err)
	assert.Equal(t, "start", doc.StartID())

	doc, err = document.DecodeBytes([]byte(sampleJSON), "")
	require.NoError(t, err)
	assert.Equal(t, "q", doc.StartID())
}

func TestStartID_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		doc  document.Document
		want string
	}{
		{"Explicit", document.Document{Start: "b", Nodes: []document.Node{{ID: "a"}, {ID: "b"}}}, "b"},
		{"Named start", document.Document{Nodes: []document.Node{{ID: "a"}, {ID: "start"}}}, "start"},
		{"First node", document.Document{Nodes: []document.Node{{ID: "a"}, {ID: "b"}}}, "a"},
		{"Empty", document.Document{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.StartID())
		})
	}
}

func TestDecode_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "Unknown type",
			input:   `{"nodes":[{"id":"a","type":"decision","data":{}}],"edges":[]}`,
			wantErr: `nodes[0].type: unknown step type "decision"`,
		},
		{
			name:    "Empty id",
			input:   `{"nodes":[{"id":"","type":"terminal","data":{}}],"edges":[]}`,
			wantErr: "nodes[0].id: must not be empty",
		},
		{
			name:    "Duplicate node",
			input:   `{"nodes":[{"id":"a","type":"terminal","data":{}},{"id":"a","type":"terminal","data":{}}],"edges":[]}`,
			wantErr: `nodes[1].id: duplicate node id "a"`,
		},
		{
			name:    "Duplicate choice",
			input:   `{"nodes":[{"id":"a","type":"singleChoice","data":{"choices":[{"id":"c","label":"C"},{"id":"c","label":"D"}]}}],"edges":[]}`,
			wantErr: `nodes[0].data.choices[1].id: duplicate choice id "c"`,
		},
		{
			name:    "Unknown requirement",
			input:   `{"nodes":[{"id":"a","type":"multiChoice","data":{"choices":[{"id":"c","label":"C"}],"outputPaths":[{"id":"p","label":"P","requiredChoiceIds":["z"]}]}}],"edges":[]}`,
			wantErr: `nodes[0].data.outputPaths[0].requiredChoiceIds: unknown choice "z"`,
		},
		{
			name:    "Choices on informational",
			input:   `{"nodes":[{"id":"a","type":"informational","data":{"choices":[{"id":"c","label":"C"}]}}],"edges":[]}`,
			wantErr: "nodes[0].data.choices: not allowed on informational steps",
		},
		{
			name:    "Unknown start",
			input:   `{"nodes":[{"id":"a","type":"terminal","data":{}}],"edges":[],"start":"b"}`,
			wantErr: `start: unknown node "b"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := document.DecodeBytes([]byte(tt.input), document.FormatJSON)
			require.Error(t, err)

			var derr *document.DecodeError
			require.True(t, errors.As(err, &derr), "expected DecodeError, got %T", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecode_AggregatesErrors(t *testing.T) {
	input := `{"nodes":[{"id":"","type":"bogus","data":{}},{"id":"b","type":"terminal","data":{}}],"edges":[{"source":"","target":""}]}`
	_, err := document.DecodeBytes([]byte(input), document.FormatJSON)
	require.Error(t, err)

	errs := document.FieldErrors(err)
	assert.Len(t, errs, 4)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid flow document: 4 errors"))
}

func TestDecode_DanglingEdgesAreKept(t *testing.T) {
	input := `{"nodes":[{"id":"a","type":"informational","data":{}}],"edges":[{"source":"a","target":"ghost"}]}`
	g, err := document.Parse([]byte(input), document.FormatJSON)
	require.NoError(t, err)
	require.Len(t, g.Outgoing("a"), 1)
	assert.Equal(t, "ghost", g.Outgoing("a")[0].Target)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := document.DecodeBytes([]byte(`{"nodes": [`), document.FormatJSON)
	assert.ErrorContains(t, err, "failed to parse JSON document")

	_, err = document.DecodeBytes([]byte(`{}`), "toml")
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}

func TestFromGraph(t *testing.T) {
	b := dsl.New()
	b.Single("q", "Pick").Choice("a", "A", "end").Choice("b", "B", "")
	b.Terminal("end", "Bye").Restart()
	g := b.MustBuild()

	doc := document.FromGraph(g)
	assert.Equal(t, "q", doc.Start)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "singleChoice", doc.Nodes[0].Type)
	assert.Len(t, doc.Nodes[0].Data.Choices, 2)
	assert.True(t, doc.Nodes[1].Data.AllowRestart)
	require.Len(t, doc.Edges, 1)

	again, err := doc.Graph()
	require.NoError(t, err)
	assert.Equal(t, g.Steps(), again.Steps())
	assert.Equal(t, g.Connections(), again.Connections())
}

func TestFormats(t *testing.T) {
	assert.Equal(t, document.FormatJSON, document.FormatFromPath("flows/a.JSON"))
	assert.Equal(t, document.FormatYAML, document.FormatFromPath("https://x/y/flow.yml?raw=1"))
	assert.Equal(t, document.Format(""), document.FormatFromPath("flow.txt"))

	f, err := document.ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, document.FormatYAML, f)
	_, err = document.ParseFormat("xml")
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}
