package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// ErrInvalidCommand is returned for input that maps to no action on the current step.
var ErrInvalidCommand = errors.New("invalid command")

// CommandAction names a user action.
type CommandAction string

const (
	CommandToggle  CommandAction = "toggle"
	CommandAdvance CommandAction = "advance"
	CommandBack    CommandAction = "back"
	CommandRestart CommandAction = "restart"
	CommandHelp    CommandAction = "help"
	CommandQuit    CommandAction = "quit"
)

// Command is a parsed user action.
type Command struct {
	Action   CommandAction `json:"action"`
	ChoiceID string        `json:"choice_id,omitempty"`
}

// ParseCommand interprets one input line against the step currently shown.
// Numbers are 1-based positions in the displayed choice list.
func ParseCommand(input string, view domain.View) (Command, error) {
	trimmed := strings.TrimSpace(input)
	switch strings.ToLower(trimmed) {
	case "", "next", "n":
		return Command{Action: CommandAdvance}, nil
	case "back", "b":
		return Command{Action: CommandBack}, nil
	case "restart":
		return Command{Action: CommandRestart}, nil
	case "help", "?":
		return Command{Action: CommandHelp}, nil
	case "quit", "exit", "q":
		return Command{Action: CommandQuit}, nil
	}

	choices := view.Step.Choices
	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 1 || n > len(choices) {
			return Command{}, fmt.Errorf("%w: no choice number %d", ErrInvalidCommand, n)
		}
		return Command{Action: CommandToggle, ChoiceID: choices[n-1].ID}, nil
	}
	for _, c := range choices {
		if c.ID == trimmed {
			return Command{Action: CommandToggle, ChoiceID: c.ID}, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, trimmed)
}

// Explain turns an engine error into a message fit for an end user.
func Explain(err error) string {
	switch {
	case errors.Is(err, domain.ErrSelectionRequired):
		return "Please select an option first."
	case errors.Is(err, domain.ErrNoPathDefined):
		return "No path continues from this selection. Try a different one."
	case errors.Is(err, domain.ErrTerminalDeadEnd):
		return "This is the end of the flow."
	case errors.Is(err, domain.ErrUnknownChoice):
		return "That choice is not available here."
	case errors.Is(err, ErrInvalidCommand):
		return fmt.Sprintf("%v. Type 'help' for the list of commands.", err)
	case domain.IsConfigurationError(err):
		return fmt.Sprintf("This flow is misconfigured (%v). Go back or restart.", err)
	}
	return err.Error()
}

const helpText = `Commands:
  1, 2, ...     toggle the numbered choice
  Enter, next   continue
  back          go to the previous step
  restart       start over
  quit          leave`
