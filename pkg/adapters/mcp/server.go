package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/twentyfive"
	"github.com/aretw0/twentyfive/internal/logging"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// InstancesURI is the resource listing every known instance.
const InstancesURI = "twentyfive://instances"

// Service is the list service exposed as MCP tools.
type Service interface {
	CreateList(ctx context.Context, instanceID string, kind domain.Kind) error
	ListItems(ctx context.Context, instanceID string, kind domain.Kind) (domain.ListResponse, error)
	AddItem(ctx context.Context, instanceID string, kind domain.Kind, item string) error
	MoveItem(ctx context.Context, instanceID string, kind domain.Kind, item string, targetIndex int) error
	DeleteItem(ctx context.Context, instanceID string, kind domain.Kind, item string) error
	Instances(ctx context.Context) ([]string, error)
}

// ListArgs addresses one list.
type ListArgs struct {
	Instance string `json:"instance"`
	Kind     string `json:"kind"`
}

// ItemArgs addresses one item of a list.
type ItemArgs struct {
	Instance string `json:"instance"`
	Kind     string `json:"kind"`
	Item     string `json:"item"`
}

// MoveArgs addresses an item and its new position.
type MoveArgs struct {
	Instance    string `json:"instance"`
	Kind        string `json:"kind"`
	Item        string `json:"item"`
	TargetIndex int    `json:"target_index"`
}

// ListResult is returned by every tool: the list after the operation.
type ListResult struct {
	Instance  string   `json:"instance" jsonschema_description:"The instance the list belongs to"`
	Kind      string   `json:"kind" jsonschema_description:"goals or tasks"`
	Items     []string `json:"items" jsonschema_description:"Items in display order"`
	Remaining *int     `json:"remaining,omitempty" jsonschema_description:"Free slots when a capacity is configured"`
}

// Server wraps the list service and exposes it as an MCP Server.
type Server struct {
	service   Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(service Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		service:   service,
		logger:    logger,
		mcpServer: server.NewMCPServer("twentyfive-mcp", strings.TrimSpace(twentyfive.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
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
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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

func listParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("instance", mcp.Required(), mcp.Description("Instance ID")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Which list: goals or tasks"), mcp.Enum("goals", "tasks")),
	}
}

func tool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	all := append([]mcp.ToolOption{mcp.WithDescription(description)}, listParams()...)
	all = append(all, opts...)
	all = append(all, mcp.WithOutputSchema[ListResult]())
	return mcp.NewTool(name, all...)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(tool("create_list",
		"Create (or reset to empty) the goals or tasks list of an instance.",
	), mcp.NewStructuredToolHandler(s.handleCreate))

	s.mcpServer.AddTool(tool("list_items",
		"List the items of a list in display order.",
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(tool("add_item",
		"Append an item to a list. Adding an item already present changes nothing.",
		mcp.WithString("item", mcp.Required(), mcp.Description("Item text")),
	), mcp.NewStructuredToolHandler(s.handleAdd))

	s.mcpServer.AddTool(tool("move_item",
		"Move an existing item to a new position (0-based).",
		mcp.WithString("item", mcp.Required(), mcp.Description("Item text")),
		mcp.WithNumber("target_index", mcp.Required(), mcp.Description("New position, 0-based")),
	), mcp.NewStructuredToolHandler(s.handleMove))

	s.mcpServer.AddTool(tool("delete_item",
		"Remove an existing item from a list.",
		mcp.WithString("item", mcp.Required(), mcp.Description("Item text")),
	), mcp.NewStructuredToolHandler(s.handleDelete))
}

func (s *Server) result(ctx context.Context, instance string, kind domain.Kind) (ListResult, error) {
	resp, err := s.service.ListItems(ctx, instance, kind)
	if err != nil {
		return ListResult{}, err
	}
	items := resp.Items
	if items == nil {
		items = []string{}
	}
	return ListResult{Instance: instance, Kind: string(kind), Items: items, Remaining: resp.Remaining}, nil
}

func (s *Server) handleCreate(ctx context.Context, _ mcp.CallToolRequest, args ListArgs) (ListResult, error) {
	kind, err := domain.ParseKind(args.Kind)
	if err != nil {
		return ListResult{}, err
	}
	if err := s.service.CreateList(ctx, args.Instance, kind); err != nil {
		return ListResult{}, fmt.Errorf("create failed: %w", err)
	}
	return s.result(ctx, args.Instance, kind)
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest, args ListArgs) (ListResult, error) {
	kind, err := domain.ParseKind(args.Kind)
	if err != nil {
		return ListResult{}, err
	}
	return s.result(ctx, args.Instance, kind)
}

func (s *Server) handleAdd(ctx context.Context, _ mcp.CallToolRequest, args ItemArgs) (ListResult, error) {
	kind, err := domain.ParseKind(args.Kind)
	if err != nil {
		return ListResult{}, err
	}
	if err := s.service.AddItem(ctx, args.Instance, kind, args.Item); err != nil {
		s.logger.Warn("MCP add_item rejected", "error", err)
		return ListResult{}, fmt.Errorf("add failed: %w", err)
	}
	return s.result(ctx, args.Instance, kind)
}

func (s *Server) handleMove(ctx context.Context, _ mcp.CallToolRequest, args MoveArgs) (ListResult, error) {
	kind, err := domain.ParseKind(args.Kind)
	if err != nil {
		return ListResult{}, err
	}
	if err := s.service.MoveItem(ctx, args.Instance, kind, args.Item, args.TargetIndex); err != nil {
		s.logger.Warn("MCP move_item rejected", "error", err)
		return ListResult{}, fmt.Errorf("move failed: %w", err)
	}
	return s.result(ctx, args.Instance, kind)
}

func (s *Server) handleDelete(ctx context.Context, _ mcp.CallToolRequest, args ItemArgs) (ListResult, error) {
	kind, err := domain.ParseKind(args.Kind)
	if err != nil {
		return ListResult{}, err
	}
	if err := s.service.DeleteItem(ctx, args.Instance, kind, args.Item); err != nil {
		s.logger.Warn("MCP delete_item rejected", "error", err)
		return ListResult{}, fmt.Errorf("delete failed: %w", err)
	}
	return s.result(ctx, args.Instance, kind)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(InstancesURI, "Known Instances",
		mcp.WithMIMEType("application/json"),
	), s.readInstances)
}

func (s *Server) readInstances(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.service.Instances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	jsonBytes, _ := json.Marshal(map[string][]string{"instances": ids})

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      InstancesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
