package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/document"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	GraphURI        = "wayfinder://graph"
	GraphMermaidURI = "wayfinder://graph/mermaid"
)

// StepArgs are the arguments shared by tools acting on a run.
// State is the JSON encoding of the state returned by the previous call.
type StepArgs struct {
	State string `json:"state"`
}

// ViewArgs are the arguments of view_step.
type ViewArgs struct {
	State string `json:"state,omitempty"`
	Start string `json:"start,omitempty"`
}

// ToggleArgs are the arguments of toggle_choice.
type ToggleArgs struct {
	State    string `json:"state"`
	ChoiceID string `json:"choice_id"`
}

// GraphArgs are the arguments of get_graph.
type GraphArgs struct {
	Format string `json:"format,omitempty"`
}

// StepResponse is returned by every run tool. On a rejected action Error
// explains why and State is the untouched input.
type StepResponse struct {
	State domain.State `json:"state" jsonschema_description:"The run state to pass back, JSON-encoded, on the next call"`
	View  domain.View  `json:"view" jsonschema_description:"The current step with its choices and navigation flags"`
	Error string       `json:"error,omitempty" jsonschema_description:"Why the action was rejected, if it was"`
}

// Server exposes a flow as stateless MCP tools: runs travel with each call.
type Server struct {
	engine    ports.StatelessEngine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.StatelessEngine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("wayfinder-mcp", version, server.WithToolCapabilities(false), server.WithResourceCapabilities(false, false)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	stateParam := mcp.WithString("state", mcp.Required(),
		mcp.Description("JSON-encoded state returned by the previous call"))

	s.mcpServer.AddTool(mcp.NewTool("view_step",
		mcp.WithDescription("Show the current step of a run. Without a state, starts a new run."),
		mcp.WithString("state", mcp.Description("JSON-encoded state returned by the previous call (optional)")),
		mcp.WithString("start", mcp.Description("Step to start at when no state is given (optional)")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleView))

	s.mcpServer.AddTool(mcp.NewTool("toggle_choice",
		mcp.WithDescription("Select or deselect a choice on the current step. Single-choice steps keep one selection."),
		stateParam,
		mcp.WithString("choice_id", mcp.Required(), mcp.Description("Id of the choice to toggle")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleToggle))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Continue to the next step according to the current selections. On a terminal step that allows it, restarts the run."),
		stateParam,
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.command(runner.CommandAdvance)))

	s.mcpServer.AddTool(mcp.NewTool("back",
		mcp.WithDescription("Return to the previous step, discarding the current selections."),
		stateParam,
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.command(runner.CommandBack)))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full flow definition for introspection."),
		mcp.WithString("format", mcp.Enum("json", "mermaid"), mcp.Description("Output format (default json)")),
	), s.handleGraph)
}

func (s *Server) handleView(_ context.Context, _ mcp.CallToolRequest, args ViewArgs) (StepResponse, error) {
	var (
		state domain.State
		err   error
	)
	if args.State == "" {
		state, err = s.engine.Start(args.Start)
		if err != nil {
			return StepResponse{}, fmt.Errorf("start failed: %w", err)
		}
	} else if state, err = decodeState(args.State); err != nil {
		return StepResponse{}, err
	}

	resp, err := runner.ViewOf(s.engine, state)
	if err != nil {
		return StepResponse{}, fmt.Errorf("view failed: %w", err)
	}
	return toStepResponse(resp), nil
}

func (s *Server) handleToggle(_ context.Context, _ mcp.CallToolRequest, args ToggleArgs) (StepResponse, error) {
	choiceID, err := runner.SanitizeInput(args.ChoiceID)
	if err != nil {
		return StepResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.apply(args.State, runner.Command{Action: runner.CommandToggle, ChoiceID: choiceID})
}

func (s *Server) command(action runner.CommandAction) mcp.StructuredToolHandlerFunc[StepArgs, StepResponse] {
	return func(_ context.Context, _ mcp.CallToolRequest, args StepArgs) (StepResponse, error) {
		return s.apply(args.State, runner.Command{Action: action})
	}
}

// apply reports rejections from the user's selections in the response, so the
// model can recover, and fails the call for everything else.
func (s *Server) apply(encoded string, cmd runner.Command) (StepResponse, error) {
	state, err := decodeState(encoded)
	if err != nil {
		return StepResponse{}, err
	}

	resp, err := runner.Apply(s.engine, state, cmd)
	if err != nil {
		s.logger.Debug("MCP action rejected", "action", cmd.Action, "err", err)
		if resp == nil || resp.Error == "" {
			return StepResponse{}, fmt.Errorf("%s failed: %w", cmd.Action, err)
		}
	}
	return toStepResponse(resp), nil
}

func (s *Server) handleGraph(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch format := request.GetString("format", "json"); format {
	case "json":
		data, err := s.graphJSON()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	case "mermaid":
		return mcp.NewToolResultText(graph.GenerateMermaid(s.engine.Graph(), nil)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Flow Definition",
		mcp.WithMIMEType("application/json"),
	), func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := s.graphJSON()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: GraphURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(GraphMermaidURI, "Flow Diagram",
		mcp.WithMIMEType("text/plain"),
	), func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: GraphMermaidURI, MIMEType: "text/plain", Text: graph.GenerateMermaid(s.engine.Graph(), nil)},
		}, nil
	})
}

func (s *Server) graphJSON() ([]byte, error) {
	data, err := json.Marshal(document.FromGraph(s.engine.Graph()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return data, nil
}

func decodeState(encoded string) (domain.State, error) {
	var state domain.State
	if err := json.Unmarshal([]byte(encoded), &state); err != nil {
		return state, fmt.Errorf("invalid state: %w", err)
	}
	if state.CurrentStepID == "" {
		return state, errors.New("invalid state: current_step_id is required")
	}
	return state.Normalized(), nil
}

func toStepResponse(resp *runner.Response) StepResponse {
	return StepResponse{State: resp.State, View: resp.View, Error: resp.Error}
}
