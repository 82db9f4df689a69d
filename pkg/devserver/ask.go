package devserver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type askRequest struct {
	Question    string         `json:"question"`
	ModuleID    *int           `json:"module_id"`
	Config      map[string]any `json:"config"`
	ChatHistory []Message      `json:"chat_history"`
	SessionID   *int           `json:"session_id"`
}

type streamRecord struct {
	Chunk *string `json:"chunk,omitempty"`
	Done  bool    `json:"done,omitempty"`
	Error string  `json:"error,omitempty"`
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.Error("decoding ask request", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "Internal server error"})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "No question provided"})
	}

	// Unauthenticated questions are answered but not saved.
	owner, _ := s.state.userForToken(bearer(c))
	var sessionID int
	if req.SessionID != nil && owner != "" {
		sessionID = *req.SessionID
		if !s.state.addQuestion(owner, sessionID, req.Question) {
			s.logger.Warn("not saving question for unknown session", "session_id", sessionID)
			sessionID = 0
		}
	}

	fail := strings.Contains(req.Question, s.config.FailTrigger)
	chunks := strings.SplitAfter(s.answer(req), " ")
	delay := s.config.ChunkDelay

	s.logger.Debug("answering question",
		"module_id", req.ModuleID,
		"history", len(req.ChatHistory),
		"chunks", len(chunks),
		"fail", fail,
	)

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		if fail {
			// Deliver part of the answer before failing, like a model
			// backend erroring mid-generation.
			chunks = chunks[:len(chunks)/2]
		}

		for i := range chunks {
			if err := writeRecord(w, streamRecord{Chunk: &chunks[i]}); err != nil {
				s.logger.Debug("client went away mid-stream", "error", err)
				return
			}
			if delay > 0 {
				time.Sleep(delay)
			}
		}

		if fail {
			s.finishStream(w, streamRecord{Error: "Internal server error"})
			return
		}

		if sessionID != 0 {
			s.state.addMessage(owner, sessionID, "assistant", strings.Join(chunks, ""))
		}
		s.finishStream(w, streamRecord{Done: true})
	}))

	return nil
}

// finishStream writes the terminal done or error record.
func (s *Server) finishStream(w *bufio.Writer, rec streamRecord) {
	if err := writeRecord(w, rec); err != nil {
		s.logger.Debug("client went away before the final record",
			"done", rec.Done,
			"server_error", rec.Error,
			"error", err,
		)
	}
}

// writeRecord writes one framed record and flushes it to the client.
func writeRecord(w *bufio.Writer, rec streamRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// answer builds the canned answer for a question.
func (s *Server) answer(req askRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You asked: %q.", req.Question)
	if req.ModuleID != nil {
		fmt.Fprintf(&sb, " Searching module %d.", *req.ModuleID)
	}
	if n := len(req.ChatHistory); n > 0 {
		fmt.Fprintf(&sb, " I can see %d earlier messages.", n)
	}
	sb.WriteString(" This is a mock answer from the development server.")
	return sb.String()
}
