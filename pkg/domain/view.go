package domain

// View is the read-only projection of a State handed to presentation layers.
type View struct {
	Step       StepView  `json:"step"`
	Selections []string  `json:"selections"`
	CanAdvance bool      `json:"can_advance"`
	CanGoBack  bool      `json:"can_go_back"`
	Incoming   []StepRef `json:"incoming"`
	Outgoing   []StepRef `json:"outgoing"`
}

// StepView flattens a Step for rendering.
type StepView struct {
	ID           string       `json:"id"`
	Kind         StepKind     `json:"kind"`
	Content      string       `json:"content"`
	Choices      []ChoiceView `json:"choices,omitempty"`
	Paths        []Path       `json:"paths,omitempty"`
	AllowRestart bool         `json:"allow_restart,omitempty"`
}

// ChoiceView is a Choice annotated with its selection status.
type ChoiceView struct {
	Choice
	Selected bool `json:"selected"`
}

// StepRef is a lightweight reference to a neighboring step.
type StepRef struct {
	ID      string   `json:"id"`
	Kind    StepKind `json:"kind"`
	Content string   `json:"content"`
}

// RefOf builds a StepRef for s.
func RefOf(s Step) StepRef {
	return StepRef{ID: s.StepID(), Kind: s.Kind(), Content: s.Text()}
}

// NewStepView projects a step against the given state.
func NewStepView(s Step, state State) StepView {
	v := StepView{
		ID:      s.StepID(),
		Kind:    s.Kind(),
		Content: s.Text(),
	}
	for _, c := range ChoicesOf(s) {
		v.Choices = append(v.Choices, ChoiceView{Choice: c, Selected: state.Selected(c.ID)})
	}
	switch t := s.(type) {
	case MultiChoice:
		v.Paths = t.Paths
	case Terminal:
		v.AllowRestart = t.AllowRestart
	}
	return v
}
