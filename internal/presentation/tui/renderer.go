package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column width markdown is wrapped at.
const DefaultWordWrap = 80

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer(wordWrap int) (func(string) (string, error), error) {
	if wordWrap <= 0 {
		wordWrap = DefaultWordWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		return strings.Trim(out, "\n"), nil
	}, nil
}
