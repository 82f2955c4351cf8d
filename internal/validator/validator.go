// Package validator lints flow graphs for wiring mistakes the engine would
// only report at run time, or not at all.
package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Severity grades an issue. Errors make some run fail; warnings are suspicious.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeMissingStart    = "missing_start"
	CodeDanglingEdge    = "dangling_edge"
	CodeUnknownOutlet   = "unknown_outlet"
	CodeUnwiredOutlet   = "unwired_outlet"
	CodeDuplicateOutlet = "duplicate_outlet"
	CodeDeadEnd         = "dead_end"
	CodeAmbiguousExit   = "ambiguous_exit"
	CodeTerminalExit    = "terminal_exit"
	CodeNoElsePath      = "no_else_path"
	CodeUnreachable     = "unreachable"
)

// Issue is a single finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	StepID   string   `json:"step_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.StepID == "" {
		return fmt.Sprintf("%s [%s] %s", i.Severity, i.Code, i.Message)
	}
	return fmt.Sprintf("%s [%s] step %q: %s", i.Severity, i.Code, i.StepID, i.Message)
}

// Report lists the issues of a graph in discovery order.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Errors returns the issues with SeverityError.
func (r Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the issues with SeverityWarning.
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Err returns an *Error when the report holds errors, or nil.
// With strict set warnings count as errors.
func (r Report) Err(strict bool) error {
	issues := r.Errors()
	if strict {
		issues = r.Issues
	}
	if len(issues) == 0 {
		return nil
	}
	return &Error{Issues: issues}
}

// Error aggregates the failing issues of a report.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Issues))
	for i, issue := range e.Issues {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, issue)
	}
	return b.String()
}

// ValidateDocument decodes doc into a graph and validates it.
// Structural problems are returned as the document's *DecodeError.
func ValidateDocument(doc *document.Document) (Report, error) {
	g, err := doc.Graph()
	if err != nil {
		return Report{}, err
	}
	return Validate(g), nil
}

// Validate inspects every step and connection of g.
func Validate(g *domain.Graph) Report {
	v := &validation{g: g}

	if _, ok := g.Step(g.Start()); !ok {
		v.add(SeverityError, CodeMissingStart, "", fmt.Sprintf("start step %q does not exist", g.Start()))
	}

	for _, c := range g.Connections() {
		if _, ok := g.Step(c.Source); !ok {
			v.add(SeverityError, CodeDanglingEdge, c.Source, fmt.Sprintf("edge %s leaves from a step that does not exist", edgeName(c)))
		}
		if _, ok := g.Step(c.Target); !ok {
			v.add(SeverityError, CodeDanglingEdge, c.Source, fmt.Sprintf("edge %s points at step %q which does not exist", edgeName(c), c.Target))
		}
	}

	for _, s := range g.Steps() {
		out := g.Outgoing(s.StepID())
		switch step := s.(type) {
		case domain.Informational:
			v.checkInformational(step, out)
		case domain.SingleChoice:
			ids := make([]string, 0, len(step.Choices))
			for _, c := range step.Choices {
				ids = append(ids, c.ID)
			}
			v.checkOutlets(step.ID, "choice", ids, out)
		case domain.MultiChoice:
			ids := make([]string, 0, len(step.Paths))
			hasElse := false
			for _, p := range step.Paths {
				ids = append(ids, p.ID)
				hasElse = hasElse || len(p.Requires) == 0
			}
			v.checkOutlets(step.ID, "path", ids, out)
			if !hasElse {
				v.add(SeverityWarning, CodeNoElsePath, step.ID, "no else path: selections matching no path cannot advance")
			}
		case domain.Terminal:
			if len(out) > 0 {
				v.add(SeverityWarning, CodeTerminalExit, step.ID, fmt.Sprintf("terminal step has %d outgoing edges which are never followed", len(out)))
			}
		}
	}

	v.checkReachability()
	return Report{Issues: v.issues}
}

type validation struct {
	g      *domain.Graph
	issues []Issue
}

func (v *validation) add(sev Severity, code, stepID, msg string) {
	v.issues = append(v.issues, Issue{Severity: sev, Code: code, StepID: stepID, Message: msg})
}

func (v *validation) checkInformational(step domain.Informational, out []domain.Connection) {
	switch {
	case len(out) == 0:
		v.add(SeverityError, CodeDeadEnd, step.ID, "informational step has no outgoing edge")
	case len(out) > 1:
		v.add(SeverityWarning, CodeAmbiguousExit, step.ID, fmt.Sprintf("informational step has %d outgoing edges; only %s is followed", len(out), edgeName(out[0])))
	}
}

// checkOutlets verifies that the edges of a choice step leave from declared
// outlets, one edge per outlet, and that every outlet is wired.
func (v *validation) checkOutlets(stepID, noun string, outlets []string, out []domain.Connection) {
	wired := make(map[string]int, len(outlets))
	for _, c := range out {
		if !slices.Contains(outlets, c.Outlet) {
			if c.Outlet == "" {
				v.add(SeverityError, CodeUnknownOutlet, stepID, fmt.Sprintf("edge %s does not name the %s it leaves from", edgeName(c), noun))
			} else {
				v.add(SeverityError, CodeUnknownOutlet, stepID, fmt.Sprintf("edge %s leaves from unknown %s %q", edgeName(c), noun, c.Outlet))
			}
			continue
		}
		wired[c.Outlet]++
	}
	for _, id := range outlets {
		switch n := wired[id]; {
		case n == 0:
			v.add(SeverityWarning, CodeUnwiredOutlet, stepID, fmt.Sprintf("%s %q has no outgoing edge", noun, id))
		case n > 1:
			v.add(SeverityWarning, CodeDuplicateOutlet, stepID, fmt.Sprintf("%s %q has %d outgoing edges; only the first is followed", noun, id, n))
		}
	}
}

// checkReachability walks the graph from the start step. Restarts lead back
// to the start, so they add no reachable steps.
func (v *validation) checkReachability() {
	start := v.g.Start()
	if _, ok := v.g.Step(start); !ok {
		return
	}

	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range v.g.Outgoing(id) {
			if _, ok := v.g.Step(c.Target); ok && !seen[c.Target] {
				seen[c.Target] = true
				queue = append(queue, c.Target)
			}
		}
	}

	for _, s := range v.g.Steps() {
		if !seen[s.StepID()] {
			v.add(SeverityWarning, CodeUnreachable, s.StepID(), "step is not reachable from the start step")
		}
	}
}

func edgeName(c domain.Connection) string {
	if c.ID != "" {
		return fmt.Sprintf("%q", c.ID)
	}
	return fmt.Sprintf("%s->%s", c.Source, c.Target)
}
