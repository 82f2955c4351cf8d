package domain

// StepKind identifies which of the four step variants a Step is.
type StepKind string

const (
	// KindInformational displays content and continues unconditionally.
	KindInformational StepKind = "informational"
	// KindSingleChoice asks the user to pick exactly one choice.
	KindSingleChoice StepKind = "singleChoice"
	// KindMultiChoice asks the user to pick any combination of choices.
	KindMultiChoice StepKind = "multiChoice"
	// KindTerminal ends the flow, optionally offering a restart.
	KindTerminal StepKind = "terminal"
)

// Valid reports whether k is one of the known step kinds.
func (k StepKind) Valid() bool {
	switch k {
	case KindInformational, KindSingleChoice, KindMultiChoice, KindTerminal:
		return true
	}
	return false
}

// Step is a node of the flow graph.
// The set of implementations is closed: Informational, SingleChoice,
// MultiChoice and Terminal.
type Step interface {
	StepID() string
	Kind() StepKind
	Text() string

	sealed()
}

// StepHeader holds the fields shared by every step kind.
type StepHeader struct {
	ID      string `json:"id" yaml:"id"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// StepID returns the unique identifier of the step.
func (h StepHeader) StepID() string { return h.ID }

// Text returns the display content of the step.
func (h StepHeader) Text() string { return h.Content }

// Choice is a selectable option of a SingleChoice or MultiChoice step.
type Choice struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Path is a named rule of a MultiChoice step mapping a required combination of
// choices to one outgoing connection. An empty Requires set is the else path.
type Path struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Requires []string `json:"requiredChoiceIds" yaml:"requiredChoiceIds"`
}

// Specificity is the number of distinct choices the path requires.
func (p Path) Specificity() int {
	return len(NewSelectionSet(p.Requires...))
}

// Informational displays content and follows its single unconditional connection.
type Informational struct {
	StepHeader
}

// SingleChoice offers an ordered list of mutually exclusive choices.
type SingleChoice struct {
	StepHeader
	Choices []Choice
}

// MultiChoice offers an ordered list of combinable choices, resolved through Paths.
type MultiChoice struct {
	StepHeader
	Choices []Choice
	Paths   []Path
}

// Terminal ends the flow.
type Terminal struct {
	StepHeader
	AllowRestart bool
}

func (Informational) Kind() StepKind { return KindInformational }
func (SingleChoice) Kind() StepKind  { return KindSingleChoice }
func (MultiChoice) Kind() StepKind   { return KindMultiChoice }
func (Terminal) Kind() StepKind      { return KindTerminal }

func (Informational) sealed() {}
func (SingleChoice) sealed()  {}
func (MultiChoice) sealed()   {}
func (Terminal) sealed()      {}

// ChoicesOf returns the choices offered by a step, or nil for kinds without choices.
func ChoicesOf(s Step) []Choice {
	switch v := s.(type) {
	case SingleChoice:
		return v.Choices
	case MultiChoice:
		return v.Choices
	}
	return nil
}

// HasChoice reports whether the step offers a choice with the given id.
func HasChoice(s Step, choiceID string) bool {
	for _, c := range ChoicesOf(s) {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}
