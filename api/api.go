package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/devassist/api/mcp"
	"github.com/papercomputeco/devassist/pkg/storage"
)

// Server serves recorded turns from a storage driver.
type Server struct {
	config Config
	driver storage.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is owned by the caller and is not closed on Shutdown.
func NewServer(config Config, driver storage.Driver, logger *slog.Logger) (*Server, error) {
	if driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		driver: driver,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/sessions/:id/turns", s.handleListTurns)
	app.Get("/v1/turns/:id", s.handleGetTurn)

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Driver: driver,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting transcript API",
		"listen", s.config.ListenAddr,
		"mcp", !s.config.DisableMCP,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Handler exposes the routes as a net/http handler.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}
