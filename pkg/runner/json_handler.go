package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Event is one line written by JSONHandler.
type Event struct {
	Type    string       `json:"type"` // "step" or "message"
	View    *domain.View `json:"view,omitempty"`
	Message string       `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Each input line is either a JSON string or raw text holding a command.
type JSONHandler struct {
	mu      sync.Mutex
	encoder *json.Encoder
	pump    *linePump
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		encoder: json.NewEncoder(w),
		pump:    newLinePump(r),
	}
}

func (h *JSONHandler) emit(e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(e)
}

// Show emits a "step" event.
func (h *JSONHandler) Show(_ context.Context, view domain.View) error {
	return h.emit(Event{Type: "step", View: &view})
}

// SystemOutput emits a "message" event.
func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	return h.emit(Event{Type: "message", Message: msg})
}

// Input reads one line. JSON strings are unquoted; anything else is taken verbatim.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	line, err := h.pump.next(ctx)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)

	var val string
	if err := json.Unmarshal([]byte(line), &val); err == nil {
		line = val
	}
	return SanitizeInput(line)
}
