package mcp

import (
	"context"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/goto/internal/app"
)

const (
	// ServerName is the MCP server name
	ServerName = "goto"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp *server.MCPServer
	app *app.App
}

// NewServer creates a new MCP server instance over an opened engine. The
// caller keeps ownership of a and closes it after Serve returns.
func NewServer(a *app.App, version string) *Server {
	if version == "" {
		version = ServerVersion
	}

	s := &Server{
		mcp: server.NewMCPServer(ServerName, version, server.WithToolCapabilities(false)),
		app: a,
	}
	s.registerTools()
	return s
}

// Serve runs the MCP protocol on stdio and blocks until ctx is done or
// stdin closes
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeIO(ctx, os.Stdin, os.Stdout)
}

// ServeIO runs the MCP protocol over the given streams
func (s *Server) ServeIO(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(resolveProjectTool(), s.handleResolveProject)
	s.mcp.AddTool(listProjectsTool(), s.handleListProjects)
	s.mcp.AddTool(updateIndexTool(), s.handleUpdateIndex)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
