// Package mcp exposes workflow routing over the Model Context Protocol, so
// LLM agents can query graphs, resolve handoffs and validate workflows
// through tool calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/router"
)

// SummaryResult is the structured output of the workflow_summary tool.
type SummaryResult struct {
	Workflow string         `json:"workflow" jsonschema_description:"Workflow name"`
	Summary  router.Summary `json:"summary" jsonschema_description:"Aggregate counts and classifications"`
}

// NextAgentsResult is the structured output of the get_next_agents tool.
type NextAgentsResult struct {
	Agent string             `json:"agent" jsonschema_description:"Normalized agent identifier"`
	Next  []router.NextAgent `json:"next" jsonschema_description:"Outgoing options in routing order"`
}

// TransitionResult is the structured output of the can_transition tool.
type TransitionResult struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Allowed bool   `json:"allowed" jsonschema_description:"Whether a direct route exists"`
}

// LoopPairResult is the structured output of the is_loop_pair tool.
type LoopPairResult struct {
	A        string `json:"a"`
	B        string `json:"b"`
	LoopPair bool   `json:"loop_pair" jsonschema_description:"Whether the two agents share a bidirectional route"`
}

// PathResult is the structured output of the find_path tool.
type PathResult struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Found bool     `json:"found"`
	Path  []string `json:"path" jsonschema_description:"Agent identifiers from start to end, empty when unreachable"`
}

// ValidationResult is the structured output of the validate_workflow tool.
type ValidationResult struct {
	Workflow string         `json:"workflow"`
	Clean    bool           `json:"clean"`
	Findings []flow.Finding `json:"findings" jsonschema_description:"Advisory findings in deterministic order"`
}

// ReloadResult is the structured output of the reload_workflow tool.
type ReloadResult struct {
	Workflow string `json:"workflow"`
	Reloaded bool   `json:"reloaded"`
}

type workflowArgs struct {
	Workflow string `mapstructure:"workflow"`
}

type agentArgs struct {
	Workflow string `mapstructure:"workflow"`
	Agent    string `mapstructure:"agent"`
}

type transitionArgs struct {
	Workflow string `mapstructure:"workflow"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

type loopArgs struct {
	Workflow string `mapstructure:"workflow"`
	A        string `mapstructure:"a"`
	B        string `mapstructure:"b"`
}

// Server exposes a workflow registry as an MCP server.
type Server struct {
	registry  *registry.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance over the given registry.
func NewServer(reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version))
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and blocks until the
// context is canceled or the listener fails.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_workflows
	s.mcpServer.AddTool(mcp.NewTool("list_workflows",
		mcp.WithDescription("List the names of all loaded workflows."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(map[string][]string{"workflows": s.registry.Names()})
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: workflow_summary
	summaryTool := mcp.NewTool("workflow_summary",
		mcp.WithDescription("Summarize a workflow: agent and route counts, entry points, completion points and per-agent fan-out."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("Workflow name")),
		mcp.WithOutputSchema[SummaryResult](),
	)
	s.mcpServer.AddTool(summaryTool, mcp.NewStructuredToolHandler(s.handleSummary))

	// TOOL: get_next_agents
	nextTool := mcp.NewTool("get_next_agents",
		mcp.WithDescription("Resolve the outgoing routes from an agent, with target display names and labels."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("Workflow name")),
		mcp.WithString("agent", mcp.Required(), mcp.Description("Agent identifier (case-insensitive)")),
		mcp.WithOutputSchema[NextAgentsResult](),
	)
	s.mcpServer.AddTool(nextTool, mcp.NewStructuredToolHandler(s.handleNextAgents))

	// TOOL: can_transition
	transitionTool := mcp.NewTool("can_transition",
		mcp.WithDescription("Check whether a direct route exists between two agents."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("Workflow name")),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source agent identifier")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target agent identifier")),
		mcp.WithOutputSchema[TransitionResult](),
	)
	s.mcpServer.AddTool(transitionTool, mcp.NewStructuredToolHandler(s.handleTransition))

	// TOOL: is_loop_pair
	loopTool := mcp.NewTool("is_loop_pair",
		mcp.WithDescription("Check whether two agents share a bidirectional collaboration route."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("Workflow name")),
		mcp.WithString("a", mcp.Required(), mcp.Description("First agent identifier")),
		mcp.WithString("b", mcp.Required(), mcp.Description("Second agent identifier")),
		mcp.WithOutputSchema[LoopPairResult](),
	)
	s.mcpServer.AddTool(loopTool, mcp.NewStructuredToolHandler(s.handleLoopPair))

	// TOOL: find_path
	pathTool := mcp.NewTool("find_path",
		mcp.WithDescription("Find the shortest route chain between two agents."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("Workflow name")),
		mcp.WithString("from", mcp.Required(), mcp.Description("Start agent identifier")),
		mcp.WithString("to", mcp.Required(), mcp.Description("End agent identifier")),
		mcp.WithOutputSchema[PathResult](),
	)
	s.mcpServer.AddTool(pathTool, mcp.NewStructuredToolHandler(s.handlePath))

	// TOOL: validate_workflow
	validateTool := mcp.NewTool("validate_workflow",
		mcp.WithDescription("Run advisory checks: unreachable agents, dead ends and broken route references."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("Workflow name")),
		mcp.WithOutputSchema[ValidationResult](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: reload_workflow
	reloadTool := mcp.NewTool("reload_workflow",
		mcp.WithDescription("Recompile a workflow from its source."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("Workflow name")),
		mcp.WithOutputSchema[ReloadResult](),
	)
	s.mcpServer.AddTool(reloadTool, mcp.NewStructuredToolHandler(s.handleReload))
}

// Handler methods for structured tools

func (s *Server) handleSummary(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (SummaryResult, error) {
	var args workflowArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return SummaryResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	eng, err := s.registry.Get(args.Workflow)
	if err != nil {
		return SummaryResult{}, err
	}
	return SummaryResult{Workflow: eng.Name, Summary: eng.Summary()}, nil
}

func (s *Server) handleNextAgents(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (NextAgentsResult, error) {
	var args agentArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return NextAgentsResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	eng, err := s.registry.Get(args.Workflow)
	if err != nil {
		return NextAgentsResult{}, err
	}
	return NextAgentsResult{
		Agent: flow.NormalizeID(args.Agent),
		Next:  eng.NextAgents(args.Agent),
	}, nil
}

func (s *Server) handleTransition(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (TransitionResult, error) {
	var args transitionArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return TransitionResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	eng, err := s.registry.Get(args.Workflow)
	if err != nil {
		return TransitionResult{}, err
	}
	return TransitionResult{
		From:    flow.NormalizeID(args.From),
		To:      flow.NormalizeID(args.To),
		Allowed: eng.CanTransition(args.From, args.To),
	}, nil
}

func (s *Server) handleLoopPair(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (LoopPairResult, error) {
	var args loopArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return LoopPairResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	eng, err := s.registry.Get(args.Workflow)
	if err != nil {
		return LoopPairResult{}, err
	}
	return LoopPairResult{
		A:        flow.NormalizeID(args.A),
		B:        flow.NormalizeID(args.B),
		LoopPair: eng.IsLoopPair(args.A, args.B),
	}, nil
}

func (s *Server) handlePath(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (PathResult, error) {
	var args transitionArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return PathResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	eng, err := s.registry.Get(args.Workflow)
	if err != nil {
		return PathResult{}, err
	}

	path := eng.FindPath(args.From, args.To)
	if path == nil {
		path = []string{}
	}
	return PathResult{
		From:  flow.NormalizeID(args.From),
		To:    flow.NormalizeID(args.To),
		Found: len(path) > 0,
		Path:  path,
	}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (ValidationResult, error) {
	var args workflowArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return ValidationResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	eng, err := s.registry.Get(args.Workflow)
	if err != nil {
		return ValidationResult{}, err
	}

	findings := eng.Validate()
	if findings == nil {
		findings = []flow.Finding{}
	}
	return ValidationResult{
		Workflow: eng.Name,
		Clean:    len(findings) == 0,
		Findings: findings,
	}, nil
}

func (s *Server) handleReload(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (ReloadResult, error) {
	var args workflowArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return ReloadResult{}, fmt.Errorf("invalid arguments: %w", err)
	}

	if err := s.registry.Reload(ctx, args.Workflow); err != nil {
		s.logger.Error("MCP reload failed", "workflow", args.Workflow, "error", err)
		return ReloadResult{}, fmt.Errorf("reload failed: %w", err)
	}
	return ReloadResult{Workflow: args.Workflow, Reloaded: true}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: espalier://workflows
	s.mcpServer.AddResource(mcp.NewResource("espalier://workflows", "Loaded Workflow Graphs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		exports := make(map[string]*flow.Export)
		for _, name := range s.registry.Names() {
			eng, err := s.registry.Get(name)
			if err != nil {
				continue
			}
			exports[name] = eng.Export()
		}
		jsonBytes, err := json.Marshal(exports)
		if err != nil {
			return nil, fmt.Errorf("failed to export workflows: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://workflows",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
