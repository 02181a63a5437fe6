// Package mcp exposes the router as a Model Context Protocol tool server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tailored-agentic-units/router/kernel"
	"github.com/tailored-agentic-units/router/orchestrate/state"
)

const (
	ToolRoute    = "route_request"
	ToolDescribe = "describe_graph"
)

// Server wraps an Invoker as an MCP server.
type Server struct {
	invoker   kernel.Invoker
	graph     *state.Graph
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers its tools. graph may be nil,
// in which case describe_graph reports an error result.
func NewServer(invoker kernel.Invoker, graph *state.Graph, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		invoker:   invoker,
		graph:     graph,
		logger:    logger,
		mcpServer: server.NewMCPServer("router", version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

// ServeStdio serves on stdin and stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(ToolRoute,
		mcp.WithDescription("Route a request: answer a question, or generate or edit code or text and save it to a file."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The user's request")),
	), s.handleRoute)

	s.mcpServer.AddTool(mcp.NewTool(ToolDescribe,
		mcp.WithDescription("Describe the routing graph as mermaid source."),
	), s.handleDescribe)
}

func (s *Server) handleRoute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError(kernel.ErrEmptyInput.Error()), nil
	}

	result, err := s.invoker.Invoke(ctx, query)
	if err != nil {
		s.logger.Error("MCP route_request failed", "error", err)
		return mcp.NewToolResultErrorFromErr("route failed", err), nil
	}
	if result.Error != "" {
		return mcp.NewToolResultError(result.Error), nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.graph == nil {
		return mcp.NewToolResultErrorFromErr("describe failed", errors.New("graph not available")), nil
	}
	return mcp.NewToolResultText(s.graph.Mermaid()), nil
}
