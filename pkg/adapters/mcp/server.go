package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/screengraph"
	"github.com/aretw0/screengraph/internal/logging"
	graphviz "github.com/aretw0/screengraph/internal/presentation/graph"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/aretw0/screengraph/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	graphURI   = "screengraph://graph"
	mermaidURI = "screengraph://graph/mermaid"
)

// PathResult is the structured output of find_path.
type PathResult struct {
	From  string           `json:"from" jsonschema_description:"Screen the path starts from"`
	To    string           `json:"to" jsonschema_description:"Target screen"`
	Edges []graph.EdgeView `json:"edges" jsonschema_description:"Edges to follow, in order"`
}

// ActionsResult is the structured output of list_actions.
type ActionsResult struct {
	From    string   `json:"from" jsonschema_description:"Screen the search starts from"`
	Actions []string `json:"actions" jsonschema_description:"Actions reachable with the given state"`
}

// Server exposes a screen graph as MCP tools, so agents can plan navigation.
type Server struct {
	graph     *graph.Graph
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(g *graph.Graph, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		graph:     g,
		logger:    logger,
		mcpServer: server.NewMCPServer("screengraph-mcp", strings.TrimSpace(screengraph.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE. It returns when ctx
// is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the screen graph: user state fields, screens, their checks and edges."),
	), s.handleGetGraph)

	findPath := mcp.NewTool("find_path",
		mcp.WithDescription("Find the shortest sequence of edges between two screens for a given user state."),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target screen")),
		mcp.WithString("from", mcp.Description("Start screen (defaults to the initial screen)")),
		mcp.WithString("state", mcp.Description("JSON object overriding user state fields")),
		mcp.WithOutputSchema[PathResult](),
	)
	s.mcpServer.AddTool(findPath, mcp.NewStructuredToolHandler(s.handleFindPath))

	listActions := mcp.NewTool("list_actions",
		mcp.WithDescription("List the actions that can be performed from a screen, directly or after navigating."),
		mcp.WithString("from", mcp.Description("Start screen (defaults to the initial screen)")),
		mcp.WithString("state", mcp.Description("JSON object overriding user state fields")),
		mcp.WithOutputSchema[ActionsResult](),
	)
	s.mcpServer.AddTool(listActions, mcp.NewStructuredToolHandler(s.handleListActions))
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.graph.View())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode graph: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleFindPath(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PathResult, error) {
	to, _ := args["to"].(string)
	if to == "" {
		return PathResult{}, errors.New("missing 'to' argument")
	}
	from := s.from(args)

	state, err := s.state(args)
	if err != nil {
		return PathResult{}, err
	}
	path, err := s.graph.FindPath(from, to, state)
	if err != nil {
		s.logger.Debug("find_path failed", "from", from, "to", to, "error", err)
		return PathResult{}, err
	}
	return PathResult{From: from, To: to, Edges: graph.EdgeViews(path)}, nil
}

func (s *Server) handleListActions(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ActionsResult, error) {
	from := s.from(args)
	state, err := s.state(args)
	if err != nil {
		return ActionsResult{}, err
	}
	actions, err := s.graph.ReachableActions(from, state)
	if err != nil {
		return ActionsResult{}, err
	}
	if actions == nil {
		actions = []string{}
	}
	return ActionsResult{From: from, Actions: actions}, nil
}

func (s *Server) from(args map[string]interface{}) string {
	if from, _ := args["from"].(string); from != "" {
		return from
	}
	return s.graph.InitialScreen()
}

// state builds a user state from the optional "state" argument, a JSON object
// of declared fields.
func (s *Server) state(args map[string]interface{}) (*domain.UserState, error) {
	state := s.graph.NewUserState()
	raw, _ := args["state"].(string)
	if raw == "" {
		return state, nil
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}
	values, err := schema.Validate(state.Schema(), values)
	if err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}
	if err := state.Restore(values); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Screen graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.graph.View())
		if err != nil {
			return nil, fmt.Errorf("encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(mermaidURI, "Screen graph diagram",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      mermaidURI,
				MIMEType: "text/vnd.mermaid",
				Text:     graphviz.GenerateMermaid(s.graph, nil),
			},
		}, nil
	})
}
