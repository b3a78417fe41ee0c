// Package mcp exposes the translation pipeline to AI agents over the
// Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/omaradly/transmem/internal/memory"
	"github.com/omaradly/transmem/internal/offline"
	"github.com/omaradly/transmem/internal/resolver"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes translation tools.
type Server struct {
	resolver *resolver.Resolver
	memory   *memory.Store
	offline  *offline.Resolver
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server over the assembled pipeline.
func NewServer(res *resolver.Resolver, mem *memory.Store, off *offline.Resolver) *Server {
	s := &Server{
		resolver: res,
		memory:   mem,
		offline:  off,
	}

	s.mcp = server.NewMCPServer(
		"transmem",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(translateTool, s.handleTranslate)
	s.mcp.AddTool(memoryLookupTool, s.handleMemoryLookup)
	s.mcp.AddTool(memoryRememberTool, s.handleMemoryRemember)
	s.mcp.AddTool(memoryFeedbackTool, s.handleMemoryFeedback)
	s.mcp.AddTool(detectLanguageTool, s.handleDetectLanguage)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
