// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the Chatwoot operation registry as MCP tools.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/chatwoot-connector/internal/host"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
)

// Runner executes operations on behalf of tool calls.
type Runner interface {
	Run(ctx context.Context, req host.RunRequest) (*host.RunResult, error)
	Verify(ctx context.Context, api operation.API) error
}

// Server wraps the MCP server and its Chatwoot tools.
type Server struct {
	mcpServer  *server.MCPServer
	name       string
	version    string
	registry   *operation.Registry
	logger     *slog.Logger
	middleware *log.ToolMiddleware
	tools      []mcp.Tool

	mu     sync.RWMutex
	runner Runner
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name (default: "chatwoot")
	Name string

	// Version is the connector version
	Version string

	// Registry provides the operations exposed as tools
	Registry *operation.Registry

	// Runner executes tool calls
	Runner Runner

	// Logger must not write to stdout, which carries the protocol
	Logger *slog.Logger
}

// NewServer creates a server with one tool per registered operation.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if config.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if config.Name == "" {
		config.Name = "chatwoot"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(&log.Config{Level: "info", Format: log.FormatText, Output: os.Stderr})
	}
	logger = log.WithComponent(logger, "mcp")

	s := &Server{
		mcpServer:  server.NewMCPServer(config.Name, config.Version, server.WithToolCapabilities(false)),
		name:       config.Name,
		version:    config.Version,
		registry:   config.Registry,
		logger:     logger,
		middleware: log.NewToolMiddleware(logger),
		runner:     config.Runner,
	}

	s.registerTools()
	return s, nil
}

// SetRunner replaces the runner used by subsequent tool calls.
func (s *Server) SetRunner(runner Runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runner = runner
}

func (s *Server) currentRunner() Runner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runner
}

// Tools returns the registered tool definitions.
func (s *Server) Tools() []mcp.Tool {
	return s.tools
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.tools = append(s.tools, tool)
	s.mcpServer.AddTool(tool, handler)
}

// Serve speaks the MCP protocol over in and out until ctx is cancelled or
// in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting Chatwoot MCP server",
		slog.String("version", s.version),
		slog.Int("tools", len(s.tools)),
	)

	if err := server.NewStdioServer(s.mcpServer).Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	s.logger.Info("Chatwoot MCP server stopped")
	return nil
}

// Run serves over stdin and stdout.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}
