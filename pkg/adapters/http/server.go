package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/runner"
	"github.com/aretw0/wayfinder/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// maxBodySize bounds request bodies; commands are tiny.
const maxBodySize = 64 << 10

// Server exposes runs of one flow over HTTP.
// Every run lives in the session store; the server itself is stateless.
type Server struct {
	Engine   ports.StatelessEngine
	Sessions *session.Manager
	Streams  *StreamManager

	logger   *slog.Logger
	metrics  http.Handler
	sessions prometheus.Counter
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on GET /metrics, typically promhttp.HandlerFor.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithSessionCounter counts the sessions created through POST /sessions.
func WithSessionCounter(c prometheus.Counter) Option {
	return func(s *Server) {
		s.sessions = c
	}
}

// NewServer creates a Server over the given engine and session manager.
func NewServer(engine ports.StatelessEngine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.StatelessEngine, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(engine, sessions, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/graph", s.GetGraph)
	r.Get("/graph/mermaid", s.GetMermaid)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/toggle", s.Toggle)
			r.Post("/advance", s.command(runner.CommandAdvance))
			r.Post("/back", s.command(runner.CommandBack))
			r.Post("/restart", s.command(runner.CommandRestart))
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionResponse is the body returned by every run endpoint.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	runner.Response
}

// ErrorResponse is the body of failed requests that carry no run.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	ID    string `json:"id,omitempty"`
	Start string `json:"start,omitempty"`
}

// ToggleRequest is the body of POST /sessions/{id}/toggle.
type ToggleRequest struct {
	ChoiceID string `json:"choice_id"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetGraph returns the flow as an interchange document.
func (s *Server) GetGraph(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, document.FromGraph(s.Engine.Graph()))
}

// GetMermaid renders the flow as Mermaid. ?session=<id> overlays that run.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		state, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.fail(w, err)
			return
		}
		overlay = graph.OverlayOf(state)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(s.Engine.Graph(), overlay))
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession starts a new run. Without an id in the body a UUID is assigned.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := decodeBody(r, &body, true); err != nil {
		s.fail(w, err)
		return
	}
	id := body.ID
	if id == "" {
		id = uuid.NewString()
	}

	state, err := s.Engine.Start(body.Start)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.Sessions.Create(r.Context(), id, state); err != nil {
		s.fail(w, err)
		return
	}

	resp, err := runner.ViewOf(s.Engine, state)
	if err != nil {
		s.fail(w, err)
		return
	}
	if s.sessions != nil {
		s.sessions.Inc()
	}
	s.logger.Info("session created", "session_id", id, "step_id", state.CurrentStepID)
	w.Header().Set("Location", "/sessions/"+id)
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: id, Response: *resp})
}

// GetSession returns a run and its current view.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	resp, err := runner.ViewOf(s.Engine, state)
	if err != nil {
		s.failWith(w, id, resp, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id, Response: *resp})
}

// DeleteSession removes a run.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /sessions/{id}/toggle.
func (s *Server) Toggle(w http.ResponseWriter, r *http.Request) {
	var body ToggleRequest
	if err := decodeBody(r, &body, false); err != nil {
		s.fail(w, err)
		return
	}
	clean, err := runner.SanitizeInput(body.ChoiceID)
	if err != nil {
		s.fail(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if clean == "" {
		s.fail(w, fmt.Errorf("%w: choice_id is required", errBadRequest))
		return
	}
	s.apply(w, r, runner.Command{Action: runner.CommandToggle, ChoiceID: clean})
}

func (s *Server) command(action runner.CommandAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.apply(w, r, runner.Command{Action: action})
	}
}

// apply runs cmd against the stored run and broadcasts the resulting diff.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, cmd runner.Command) {
	id := chi.URLParam(r, "id")

	var (
		resp   *runner.Response
		before domain.State
	)
	_, err := s.Sessions.Update(r.Context(), id, func(state domain.State) (domain.State, error) {
		before = state
		var err error
		resp, err = runner.Apply(s.Engine, state, cmd)
		if err != nil {
			return state, err
		}
		return resp.State, nil
	})
	if err != nil {
		s.failWith(w, id, resp, err)
		return
	}

	if diff := domain.Diff(before, resp.State); diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(payload))
		}
	}
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id, Response: *resp})
}

var errBadRequest = errors.New("bad request")

// StatusFor maps an error to the HTTP status a client should see.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionExists):
		return http.StatusConflict
	case domain.IsConfigurationError(err):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSelectionRequired),
		errors.Is(err, domain.ErrNoPathDefined),
		errors.Is(err, domain.ErrTerminalDeadEnd),
		errors.Is(err, domain.ErrUnknownChoice),
		errors.Is(err, runner.ErrInvalidCommand):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.failWith(w, "", nil, err)
}

// failWith writes err. Traversal failures keep the untouched run in the body
// so clients can re-render it next to the message.
func (s *Server) failWith(w http.ResponseWriter, id string, resp *runner.Response, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "session_id", id, "err", err)
	} else {
		s.logger.Debug("request rejected", "session_id", id, "status", status, "err", err)
	}

	if resp != nil && resp.Error != "" && status != http.StatusInternalServerError {
		writeJSON(w, status, SessionResponse{SessionID: id, Response: *resp})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid request body: %w", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
