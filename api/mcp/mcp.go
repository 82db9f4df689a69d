// Package mcp provides an MCP (Model Context Protocol) server that lets
// agents read the local transcript of chat turns.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/devassist/pkg/storage"
	"github.com/papercomputeco/devassist/pkg/utils"
)

type Config struct {
	// Driver is the transcript store the tools read from.
	Driver storage.Driver

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the transcript tools.
func NewServer(c Config) (*Server, error) {
	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "devassist",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listTurnsToolName,
		Description: listTurnsDescription,
	}, s.handleListTurns)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        getTurnToolName,
		Description: getTurnDescription,
	}, s.handleGetTurn)

	s.mcpServer = mcpServer

	// Stateless: every request is served by the same tool set.
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
