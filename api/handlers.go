package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/devassist/pkg/storage"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TurnsResponse lists the turns of one session.
type TurnsResponse struct {
	SessionID int             `json:"session_id"`
	Count     int             `json:"count"`
	Turns     []*storage.Turn `json:"turns"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListTurns returns the recorded turns of a session, oldest first.
// Session 0 holds questions asked outside of any session.
func (s *Server) handleListTurns(c *fiber.Ctx) error {
	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil || sessionID < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "session id must be a non-negative integer"})
	}

	turns, err := s.driver.List(c.Context(), sessionID)
	if err != nil {
		s.logger.Error("listing turns", "session_id", sessionID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list turns"})
	}
	if turns == nil {
		turns = []*storage.Turn{}
	}

	return c.JSON(TurnsResponse{
		SessionID: sessionID,
		Count:     len(turns),
		Turns:     turns,
	})
}

// handleGetTurn returns a single turn by its ID.
func (s *Server) handleGetTurn(c *fiber.Ctx) error {
	id := c.Params("id")

	turn, err := s.driver.Get(c.Context(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: notFound.Error()})
		}
		s.logger.Error("getting turn", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get turn"})
	}

	return c.JSON(turn)
}
