package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/devassist/pkg/storage"
)

var (
	listTurnsToolName    = "list_turns"
	listTurnsDescription = "List the recorded question and answer turns of a devassist chat session, oldest first. Session 0 holds one-off questions asked outside any session."

	getTurnToolName    = "get_turn"
	getTurnDescription = "Get one recorded devassist turn by its ID, including the question, the answer and how the answer stream ended."
)

// Turn is a recorded turn as returned by the tools.
type Turn struct {
	ID         string `json:"id"`
	SessionID  int    `json:"session_id"`
	ModuleID   *int   `json:"module_id,omitempty"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
}

func toTurn(t *storage.Turn) Turn {
	return Turn{
		ID:         t.ID,
		SessionID:  t.SessionID,
		ModuleID:   t.ModuleID,
		Question:   t.Question,
		Answer:     t.Answer,
		Outcome:    string(t.Outcome),
		Error:      t.Error,
		StartedAt:  t.StartedAt.Format(time.RFC3339),
		DurationMS: t.Duration().Milliseconds(),
	}
}

// ListTurnsInput represents the input arguments for the list_turns tool.
type ListTurnsInput struct {
	SessionID int `json:"session_id" jsonschema:"the chat session ID, 0 for questions asked outside a session"`
	Limit     int `json:"limit,omitempty" jsonschema:"return only the most recent N turns (default: all)"`
}

// ListTurnsOutput represents the output of the list_turns tool.
type ListTurnsOutput struct {
	SessionID int    `json:"session_id"`
	Turns     []Turn `json:"turns"`
	Count     int    `json:"count"`
}

// GetTurnInput represents the input arguments for the get_turn tool.
type GetTurnInput struct {
	ID string `json:"id" jsonschema:"the turn ID"`
}

// GetTurnOutput represents the output of the get_turn tool.
type GetTurnOutput struct {
	Turn *Turn `json:"turn"`
}

func emptyTurns(sessionID int) ListTurnsOutput {
	return ListTurnsOutput{SessionID: sessionID, Turns: []Turn{}}
}

func (s *Server) handleListTurns(ctx context.Context, _ *mcp.CallToolRequest, input ListTurnsInput) (*mcp.CallToolResult, ListTurnsOutput, error) {
	logger := s.config.Logger
	logger.Debug("MCP list_turns request", "session_id", input.SessionID, "limit", input.Limit)

	if input.SessionID < 0 {
		return toolError("session_id must not be negative"), emptyTurns(input.SessionID), nil
	}

	turns, err := s.config.Driver.List(ctx, input.SessionID)
	if err != nil {
		logger.Error("failed to list turns", "session_id", input.SessionID, "error", err)
		return toolError(fmt.Sprintf("Failed to list turns: %v", err)), emptyTurns(input.SessionID), nil
	}
	if input.Limit > 0 && len(turns) > input.Limit {
		turns = turns[len(turns)-input.Limit:]
	}

	views := make([]Turn, 0, len(turns))
	for _, t := range turns {
		views = append(views, toTurn(t))
	}

	output := ListTurnsOutput{
		SessionID: input.SessionID,
		Turns:     views,
		Count:     len(views),
	}
	return textResult(output), output, nil
}

func (s *Server) handleGetTurn(ctx context.Context, _ *mcp.CallToolRequest, input GetTurnInput) (*mcp.CallToolResult, GetTurnOutput, error) {
	logger := s.config.Logger
	logger.Debug("MCP get_turn request", "id", input.ID)

	if input.ID == "" {
		return toolError("id is required"), GetTurnOutput{}, nil
	}

	turn, err := s.config.Driver.Get(ctx, input.ID)
	if err != nil {
		var notFound storage.NotFoundError
		if !errors.As(err, &notFound) {
			logger.Error("failed to get turn", "id", input.ID, "error", err)
		}
		return toolError(fmt.Sprintf("Failed to get turn: %v", err)), GetTurnOutput{}, nil
	}

	view := toTurn(turn)
	output := GetTurnOutput{Turn: &view}
	return textResult(output), output, nil
}

// textResult mirrors structured output as a JSON text block for clients
// that only read content.
func textResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("Failed to serialize result: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
