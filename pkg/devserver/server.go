package devserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/devassist/pkg/logger"
)

const localsUser = "username"

// Server is the mock Developer Assistant backend.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
	state  *state
}

// NewServer creates a mock backend. A nil logger discards output.
func NewServer(config Config, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	config = config.withDefaults()
	s := &Server{
		config: config,
		logger: log,
		app:    app,
		state:  newState(config),
	}

	app.Get("/ping", s.handlePing)
	app.Post("/api/login", s.handleLogin)
	app.Post("/api/change-password", s.handleChangePassword)
	app.Post("/api/ask", s.handleAsk)
	app.Get("/api/modules", s.handleListModules)
	app.Get("/api/documents", s.handleListDocuments)
	app.Get("/api/module_stats/:id", s.handleModuleStats)

	auth := s.requireToken
	app.Get("/api/user-info", auth, s.handleUserInfo)
	app.Get("/api/get_user_config", auth, s.handleUserConfig)
	app.Post("/api/save_user_config", auth, s.handleSaveUserConfig)
	app.Get("/api/chat/sessions", auth, s.handleListSessions)
	app.Post("/api/chat/sessions", auth, s.handleCreateSession)
	app.Put("/api/chat/sessions/:id", auth, s.handleRenameSession)
	app.Delete("/api/chat/sessions/:id", auth, s.handleDeleteSession)
	app.Get("/api/chat/sessions/:id/history", auth, s.handleSessionHistory)
	app.Delete("/api/chat/sessions/:id/messages", auth, s.handleClearMessages)
	app.Post("/api/chat/messages", auth, s.handleSaveMessage)

	return s
}

// Run starts the mock backend on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock backend",
		"listen", s.config.ListenAddr,
		"users", len(s.config.Users),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the mock backend.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Handler exposes the app as a net/http handler, buffering each response.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// Login issues a token for username without a password check.
func (s *Server) Login(username string) string {
	return s.state.issueToken(username)
}

// bearer returns the token of an "Authorization: Bearer" header.
func bearer(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireToken rejects requests without a token issued by this server.
func (s *Server) requireToken(c *fiber.Ctx) error {
	token := bearer(c)
	if token == "" {
		return c.Status(fiber.StatusForbidden).JSON(detail("Not authenticated"))
	}
	username, ok := s.state.userForToken(token)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(detail("Invalid token"))
	}
	c.Locals(localsUser, username)
	return c.Next()
}

func currentUser(c *fiber.Ctx) string {
	u, _ := c.Locals(localsUser).(string)
	return u
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func detail(msg string) detailResponse {
	return detailResponse{Detail: msg}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

var okResponse = successResponse{Success: true}
