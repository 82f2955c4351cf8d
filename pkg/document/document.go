package document

import (
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// DefaultStartID is used as entry point when a document does not name one.
const DefaultStartID = "start"

// Document is the serialized form of a flow graph.
type Document struct {
	Start string              `json:"start,omitempty" yaml:"start,omitempty"`
	Nodes []Node              `json:"nodes" yaml:"nodes"`
	Edges []domain.Connection `json:"edges" yaml:"edges"`
}

// Node is the serialized form of a step.
type Node struct {
	ID       string    `json:"id" yaml:"id"`
	Type     string    `json:"type" yaml:"type"`
	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`
	Data     NodeData  `json:"data" yaml:"data"`
}

// Position is the editor canvas location of a node. The engine ignores it.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData carries the kind-specific fields of a node.
type NodeData struct {
	Content      string          `json:"content,omitempty" yaml:"content,omitempty"`
	Choices      []domain.Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	OutputPaths  []domain.Path   `json:"outputPaths,omitempty" yaml:"outputPaths,omitempty"`
	AllowRestart bool            `json:"allowRestart,omitempty" yaml:"allowRestart,omitempty"`
}

// StartID resolves the entry step: the explicit start, else a node named
// "start", else the first node.
func (d *Document) StartID() string {
	if d.Start != "" {
		return d.Start
	}
	for _, n := range d.Nodes {
		if n.ID == DefaultStartID {
			return DefaultStartID
		}
	}
	if len(d.Nodes) > 0 {
		return d.Nodes[0].ID
	}
	return ""
}

// Check performs the structural validation of the document.
// It returns a *DecodeError listing every problem found, or nil.
func (d *Document) Check() error {
	var errs []error
	ids := make(map[string]bool, len(d.Nodes))

	for i, n := range d.Nodes {
		at := fmt.Sprintf("nodes[%d]", i)
		if n.ID == "" {
			errs = append(errs, &FieldError{Path: at + ".id", Reason: "must not be empty"})
		} else if ids[n.ID] {
			errs = append(errs, &FieldError{Path: at + ".id", Reason: fmt.Sprintf("duplicate node id %q", n.ID)})
		}
		ids[n.ID] = true
		errs = append(errs, checkNode(at, n)...)
	}

	for i, e := range d.Edges {
		at := fmt.Sprintf("edges[%d]", i)
		if e.Source == "" {
			errs = append(errs, &FieldError{Path: at + ".source", Reason: "must not be empty"})
		}
		if e.Target == "" {
			errs = append(errs, &FieldError{Path: at + ".target", Reason: "must not be empty"})
		}
	}

	if d.Start != "" && !ids[d.Start] {
		errs = append(errs, &FieldError{Path: "start", Reason: fmt.Sprintf("unknown node %q", d.Start)})
	}

	if len(errs) > 0 {
		return &DecodeError{Errors: errs}
	}
	return nil
}

func checkNode(at string, n Node) []error {
	var errs []error
	kind := domain.StepKind(n.Type)
	if !kind.Valid() {
		return append(errs, &FieldError{Path: at + ".type", Reason: fmt.Sprintf("unknown step type %q", n.Type)})
	}

	hasChoices := kind == domain.KindSingleChoice || kind == domain.KindMultiChoice
	if !hasChoices && len(n.Data.Choices) > 0 {
		errs = append(errs, &FieldError{Path: at + ".data.choices", Reason: fmt.Sprintf("not allowed on %s steps", kind)})
	}
	if kind != domain.KindMultiChoice && len(n.Data.OutputPaths) > 0 {
		errs = append(errs, &FieldError{Path: at + ".data.outputPaths", Reason: fmt.Sprintf("not allowed on %s steps", kind)})
	}
	if kind != domain.KindTerminal && n.Data.AllowRestart {
		errs = append(errs, &FieldError{Path: at + ".data.allowRestart", Reason: fmt.Sprintf("not allowed on %s steps", kind)})
	}

	choiceIDs := make(map[string]bool, len(n.Data.Choices))
	for j, c := range n.Data.Choices {
		cat := fmt.Sprintf("%s.data.choices[%d].id", at, j)
		switch {
		case c.ID == "":
			errs = append(errs, &FieldError{Path: cat, Reason: "must not be empty"})
		case choiceIDs[c.ID]:
			errs = append(errs, &FieldError{Path: cat, Reason: fmt.Sprintf("duplicate choice id %q", c.ID)})
		}
		choiceIDs[c.ID] = true
	}

	pathIDs := make(map[string]bool, len(n.Data.OutputPaths))
	for j, p := range n.Data.OutputPaths {
		pat := fmt.Sprintf("%s.data.outputPaths[%d]", at, j)
		switch {
		case p.ID == "":
			errs = append(errs, &FieldError{Path: pat + ".id", Reason: "must not be empty"})
		case pathIDs[p.ID]:
			errs = append(errs, &FieldError{Path: pat + ".id", Reason: fmt.Sprintf("duplicate path id %q", p.ID)})
		}
		pathIDs[p.ID] = true
		for _, req := range p.Requires {
			if !choiceIDs[req] {
				errs = append(errs, &FieldError{Path: pat + ".requiredChoiceIds", Reason: fmt.Sprintf("unknown choice %q", req)})
			}
		}
	}
	return errs
}

// Graph checks the document and converts it into an indexed domain graph.
func (d *Document) Graph() (*domain.Graph, error) {
	if err := d.Check(); err != nil {
		return nil, err
	}

	steps := make([]domain.Step, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		steps = append(steps, n.Step())
	}
	return domain.NewGraph(d.StartID(), steps, d.Edges)
}

// Step converts a node into its domain step. The node must have passed Check.
func (n Node) Step() domain.Step {
	header := domain.StepHeader{ID: n.ID, Content: n.Data.Content}
	switch domain.StepKind(n.Type) {
	case domain.KindSingleChoice:
		return domain.SingleChoice{StepHeader: header, Choices: n.Data.Choices}
	case domain.KindMultiChoice:
		return domain.MultiChoice{StepHeader: header, Choices: n.Data.Choices, Paths: n.Data.OutputPaths}
	case domain.KindTerminal:
		return domain.Terminal{StepHeader: header, AllowRestart: n.Data.AllowRestart}
	default:
		return domain.Informational{StepHeader: header}
	}
}

// NodeOf converts a domain step into its serialized form (without position).
func NodeOf(s domain.Step) Node {
	n := Node{
		ID:   s.StepID(),
		Type: string(s.Kind()),
		Data: NodeData{Content: s.Text()},
	}
	switch v := s.(type) {
	case domain.SingleChoice:
		n.Data.Choices = v.Choices
	case domain.MultiChoice:
		n.Data.Choices = v.Choices
		n.Data.OutputPaths = v.Paths
	case domain.Terminal:
		n.Data.AllowRestart = v.AllowRestart
	}
	return n
}

// FromGraph serializes a domain graph. Editor positions are not part of the
// graph and are therefore absent from the result.
func FromGraph(g *domain.Graph) *Document {
	d := &Document{
		Start: g.Start(),
		Nodes: []Node{},
		Edges: g.Connections(),
	}
	for _, s := range g.Steps() {
		d.Nodes = append(d.Nodes, NodeOf(s))
	}
	if d.Edges == nil {
		d.Edges = []domain.Connection{}
	}
	return d
}
