package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer
	// Hints toggles the one-line usage reminder under each step.
	Hints bool

	pump *linePump
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerHints enables or disables usage hints.
func WithTextHandlerHints(enabled bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Hints = enabled
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer: w,
		Hints:  true,
		pump:   newLinePump(r),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Show prints the step content, its choices with selection marks and a hint.
func (h *TextHandler) Show(_ context.Context, view domain.View) error {
	content := view.Step.Content
	if h.Renderer != nil {
		if rendered, err := h.Renderer(content); err == nil {
			content = rendered
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	if c := strings.TrimSpace(content); c != "" {
		b.WriteString(c)
		b.WriteString("\n")
	}
	if len(view.Step.Choices) > 0 {
		b.WriteString("\n")
	}
	for i, c := range view.Step.Choices {
		fmt.Fprintf(&b, "  %d) %s %s\n", i+1, mark(view.Step.Kind, c.Selected), c.Label)
	}
	if h.Hints {
		if hint := hintFor(view); hint != "" {
			fmt.Fprintf(&b, "\n(%s)\n", hint)
		}
	}

	_, err := io.WriteString(h.Writer, b.String())
	return err
}

func mark(kind domain.StepKind, selected bool) string {
	switch {
	case kind == domain.KindSingleChoice && selected:
		return "(*)"
	case kind == domain.KindSingleChoice:
		return "( )"
	case selected:
		return "[x]"
	}
	return "[ ]"
}

func hintFor(view domain.View) string {
	var parts []string
	switch view.Step.Kind {
	case domain.KindInformational:
		parts = append(parts, "Enter to continue")
	case domain.KindSingleChoice:
		parts = append(parts, "number to choose", "Enter to continue")
	case domain.KindMultiChoice:
		parts = append(parts, "number to toggle", "Enter to continue")
	case domain.KindTerminal:
		if view.Step.AllowRestart {
			parts = append(parts, "Enter to start over")
		}
	}
	if view.CanGoBack {
		parts = append(parts, "'back' to return")
	}
	return strings.Join(parts, ", ")
}

// Input prompts and reads one sanitized line, re-prompting on rejected input.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		fmt.Fprint(h.Writer, "> ")

		line, err := h.pump.next(ctx)
		if err != nil {
			return "", err
		}
		clean, err := SanitizeInput(line)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
}

// SystemOutput prints a status line, visually set apart from step content.
func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n[wayfinder] %s\n", msg)
	return err
}
