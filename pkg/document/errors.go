package document

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for documents that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FieldError represents a single structural problem in a document.
type FieldError struct {
	Path   string // Location inside the document, e.g. "nodes[2].data.choices[0].id"
	Reason string // Human-readable reason for failure
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// DecodeError aggregates every structural problem found in a document.
type DecodeError struct {
	Errors []error
}

func (e *DecodeError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid flow document: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid flow document: %d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is / errors.As.
func (e *DecodeError) Unwrap() []error {
	return e.Errors
}

// FieldErrors returns all field errors if err is a DecodeError.
// Otherwise returns nil.
func FieldErrors(err error) []error {
	var derr *DecodeError
	if errors.As(err, &derr) {
		return derr.Errors
	}
	return nil
}
