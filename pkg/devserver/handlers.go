package devserver

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// defaultUserConfig mirrors the preferences the backend hands out to users
// that never saved any.
var defaultUserConfig = map[string]any{
	"response_mode":         "concise",
	"show_source":           "Yes",
	"explanation_level":     "intermediate",
	"language_tone":         "neutral",
	"step_by_step_mode":     "Off",
	"follow_up_suggestions": "Enabled",
	"ask_for_clarification": "Yes",
	"chat_persona":          "Friendly",
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token              string         `json:"token"`
	Role               int            `json:"role"`
	MustChangePassword bool           `json:"mustChangePassword"`
	Config             map[string]any `json:"config"`
}

type changePasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
}

type saveUserConfigRequest struct {
	Config map[string]any `json:"config"`
}

type sessionNameRequest struct {
	Name string `json:"session_name"`
}

type saveMessageRequest struct {
	SessionID int    `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("invalid login request"))
	}

	ok, mustChange := s.state.checkPassword(req.Username, req.Password)
	if !ok {
		s.logger.Debug("rejected login", "username", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(detail("Invalid credentials"))
	}

	return c.JSON(loginResponse{
		Token:              s.state.issueToken(req.Username),
		MustChangePassword: mustChange,
		Config:             s.state.userConfig(req.Username),
	})
}

func (s *Server) handleChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("invalid password change request"))
	}
	if req.Username == "" || req.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(detail("Username and new password required"))
	}
	if !s.state.changePassword(req.Username, req.NewPassword) {
		return c.Status(fiber.StatusNotFound).JSON(detail("User not found"))
	}

	s.logger.Info("password changed", "username", req.Username)
	return c.JSON(okResponse)
}

func (s *Server) handleUserInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"username": currentUser(c),
			"role":     0,
		},
	})
}

func (s *Server) handleUserConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"config":  s.state.userConfig(currentUser(c)),
	})
}

func (s *Server) handleSaveUserConfig(c *fiber.Ctx) error {
	var req saveUserConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("invalid config request"))
	}
	if len(req.Config) == 0 {
		return c.JSON(errorResponse{Error: "No config provided"})
	}

	s.state.saveUserConfig(currentUser(c), req.Config)
	return c.JSON(okResponse)
}

func (s *Server) handleListModules(c *fiber.Ctx) error {
	var teamID *int
	if raw := c.Query("team_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("team_id must be an integer"))
		}
		teamID = &id
	}
	return c.JSON(fiber.Map{"modules": s.state.listModules(teamID)})
}

func (s *Server) handleListSessions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":  true,
		"sessions": s.state.listSessions(currentUser(c)),
	})
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	var req sessionNameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("invalid session request"))
		}
	}
	if req.Name == "" {
		req.Name = "Chat Session " + s.state.now().UTC().Format("2006-01-02 15:04")
	}

	id := s.state.createSession(currentUser(c), req.Name)
	return c.JSON(fiber.Map{"success": true, "session_id": id})
}

func (s *Server) handleRenameSession(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("session id must be an integer"))
	}

	var req sessionNameRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("session_name is required"))
	}

	if !s.state.renameSession(currentUser(c), id, req.Name) {
		return sessionNotFound(c)
	}
	return c.JSON(okResponse)
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("session id must be an integer"))
	}
	if !s.state.deleteSession(currentUser(c), id) {
		return sessionNotFound(c)
	}
	return c.JSON(okResponse)
}

func (s *Server) handleSessionHistory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("session id must be an integer"))
	}
	history, found := s.state.history(currentUser(c), id)
	if !found {
		return sessionNotFound(c)
	}
	return c.JSON(fiber.Map{"success": true, "history": history})
}

func (s *Server) handleClearMessages(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("session id must be an integer"))
	}
	if !s.state.clearMessages(currentUser(c), id) {
		return sessionNotFound(c)
	}
	return c.JSON(okResponse)
}

func (s *Server) handleSaveMessage(c *fiber.Ctx) error {
	var req saveMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detail("invalid message request"))
	}
	if req.Role != "user" && req.Role != "assistant" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "role must be 'user' or 'assistant'"})
	}
	if !s.state.addMessage(currentUser(c), req.SessionID, req.Role, req.Content) {
		return sessionNotFound(c)
	}
	return c.JSON(okResponse)
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "session not found"})
}
