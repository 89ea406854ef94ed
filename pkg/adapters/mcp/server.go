package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
)

// ScriptResult aligns with the HTTP adapter's response shape so agents see
// the same structure on every transport.
type ScriptResult struct {
	Script  domain.Script         `json:"script" jsonschema_description:"Ordered edit operations that reconcile the collection"`
	Summary map[domain.OpKind]int `json:"summary,omitempty" jsonschema_description:"Operation counts by kind"`
}

// Server exposes collection diffing and management as an MCP server.
type Server struct {
	manager   *registry.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance around a collection manager.
func NewServer(manager *registry.Manager) *Server {
	s := &Server{
		manager:   manager,
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version)),
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

	lifecycle.Go(ctx, func(ctx context.Context) error {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
		return nil
	})

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
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
	// TOOL: diff_collections
	diffTool := mcp.NewTool("diff_collections",
		mcp.WithDescription("Compute the minimal edit script that turns one collection snapshot into another. Both snapshots are JSON objects with a 'sections' array; each section has an 'id', optional 'title' and a 'rows' array of {id, fields}."),
		mcp.WithString("old", mcp.Description("JSON snapshot of the current collection (optional, defaults to empty)")),
		mcp.WithString("new", mcp.Description("JSON snapshot of the desired collection (optional, defaults to empty)")),
		mcp.WithOutputSchema[ScriptResult](),
	)
	s.mcpServer.AddTool(diffTool, mcp.NewStructuredToolHandler(s.handleDiff))

	// TOOL: ensure_collection
	ensureTool := mcp.NewTool("ensure_collection",
		mcp.WithDescription("Reconcile a stored collection toward a desired snapshot and return the applied edit script."),
		mcp.WithString("collection_id", mcp.Required(), mcp.Description("ID of the stored collection")),
		mcp.WithString("snapshot", mcp.Required(), mcp.Description("JSON snapshot of the desired collection")),
		mcp.WithOutputSchema[ScriptResult](),
	)
	s.mcpServer.AddTool(ensureTool, mcp.NewStructuredToolHandler(s.handleEnsure))

	// TOOL: validate_snapshot
	s.mcpServer.AddTool(mcp.NewTool("validate_snapshot",
		mcp.WithDescription("Check a snapshot for structural problems: duplicate section IDs, duplicate row IDs within a section, missing IDs."),
		mcp.WithString("snapshot", mcp.Required(), mcp.Description("JSON snapshot to validate")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := request.GetString("snapshot", "")
		var snap domain.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid JSON: %v", err)), nil
		}
		if err := snap.Validate(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("snapshot invalid: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("snapshot valid: %d sections, %d rows", len(snap.Sections), snap.RowCount())), nil
	})

	// TOOL: get_collection
	s.mcpServer.AddTool(mcp.NewTool("get_collection",
		mcp.WithDescription("Fetch the stored snapshot of a collection."),
		mcp.WithString("collection_id", mcp.Required(), mcp.Description("ID of the stored collection")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := request.GetString("collection_id", "")
		snap, err := s.manager.Load(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(snap)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: list_collections
	s.mcpServer.AddTool(mcp.NewTool("list_collections",
		mcp.WithDescription("List the IDs of all stored collections."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.manager.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleDiff(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ScriptResult, error) {
	old, err := snapshotArg(args, "old")
	if err != nil {
		return ScriptResult{}, err
	}
	desired, err := snapshotArg(args, "new")
	if err != nil {
		return ScriptResult{}, err
	}

	script, err := espalier.DiffSnapshots(old, desired)
	if err != nil {
		return ScriptResult{}, fmt.Errorf("diff failed: %w", err)
	}
	return ScriptResult{Script: script, Summary: script.Summary()}, nil
}

func (s *Server) handleEnsure(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ScriptResult, error) {
	id, _ := args["collection_id"].(string)
	desired, err := snapshotArg(args, "snapshot")
	if err != nil {
		return ScriptResult{}, err
	}

	script, err := s.manager.Ensure(ctx, id, desired)
	if err != nil {
		slog.Warn("MCP Ensure failed", "collection_id", id, "error", err)
		return ScriptResult{}, fmt.Errorf("ensure failed: %w", err)
	}
	return ScriptResult{Script: script, Summary: script.Summary()}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: espalier://collections
	s.mcpServer.AddResource(mcp.NewResource("espalier://collections", "Stored Collection IDs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.manager.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list collections: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://collections",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// snapshotArg decodes a JSON snapshot string argument. Missing or empty
// arguments read as an empty snapshot.
func snapshotArg(args map[string]interface{}, name string) (*domain.Snapshot, error) {
	raw, _ := args[name].(string)
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("argument %q is not a valid JSON snapshot: %w", name, err)
	}
	return &snap, nil
}
