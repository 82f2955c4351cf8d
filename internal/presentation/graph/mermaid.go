package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// GraphOverlay contains run state to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// OverlayOf builds the overlay of a run: its history is visited, its position current.
func OverlayOf(state domain.State) *GraphOverlay {
	return &GraphOverlay{
		VisitedSteps: append([]string(nil), state.History...),
		CurrentStep:  state.CurrentStepID,
	}
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a graph.
// It applies semantic styling:
// - Start: ((Circle))
// - SingleChoice: {Rhombus}
// - MultiChoice: {{Hexagon}}
// - Terminal: ([Stadium])
// - Informational: [Rectangle]
// Connections are labeled with the choice or path they leave from; those whose
// target does not exist are dotted. Overlay styles are applied if provided.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, step := range g.Steps() {
		safeID := sanitizeMermaidID(step.StepID())
		opener, closer := shape(step)
		if step.StepID() == g.Start() {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(step.StepID()), closer)
	}

	for _, c := range g.Connections() {
		arrow := "-->"
		if _, ok := g.Step(c.Target); !ok {
			arrow = "-.->"
		}
		if label := outletLabel(g, c); label != "" {
			if arrow == "-->" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(label))
			} else {
				arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(label))
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(c.Source), arrow, sanitizeMermaidID(c.Target))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedSteps {
			if _, ok := g.Step(id); !ok {
				continue
			}
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if _, ok := g.Step(overlay.CurrentStep); ok {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep))
		}
	}

	return sb.String()
}

func shape(step domain.Step) (string, string) {
	switch step.Kind() {
	case domain.KindSingleChoice:
		return "{", "}"
	case domain.KindMultiChoice:
		return "{{", "}}"
	case domain.KindTerminal:
		return "([", "])"
	}
	return "[", "]"
}

// outletLabel resolves the human label of the choice or path a connection leaves from.
func outletLabel(g *domain.Graph, c domain.Connection) string {
	if c.Outlet == "" {
		return ""
	}
	step, ok := g.Step(c.Source)
	if !ok {
		return c.Outlet
	}
	switch s := step.(type) {
	case domain.SingleChoice:
		for _, ch := range s.Choices {
			if ch.ID == c.Outlet {
				return ch.Label
			}
		}
	case domain.MultiChoice:
		for _, p := range s.Paths {
			if p.ID == c.Outlet {
				return p.Label
			}
		}
	}
	return c.Outlet
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
