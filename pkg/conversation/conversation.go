// Package conversation drives a chat session against the assistant backend:
// it keeps the local message history, sends the trailing window of it as
// context with each question and hands every finished turn to a recorder.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/devassist/pkg/chatstream"
	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/eventstream"
	"github.com/papercomputeco/devassist/pkg/logger"
	"github.com/papercomputeco/devassist/pkg/storage"
	"github.com/papercomputeco/devassist/pkg/worker"
)

// Replies shown in place of an answer when a turn fails.
const (
	FallbackError = "Sorry, I encountered an error while processing your request."
	FallbackEmpty = "Sorry, I received an empty response from the server."
)

// ErrEmptyQuestion is returned by Ask for blank input.
var ErrEmptyQuestion = errors.New("question is empty")

// Recorder accepts finished turns. *worker.Pool satisfies it.
type Recorder interface {
	Enqueue(job worker.Job) bool
}

// Conversation is not safe for concurrent use; turns are sequential.
type Conversation struct {
	client     *client.Client
	recorder   Recorder
	source     eventstream.EventSource
	moduleID   *int
	window     int
	userConfig map[string]any
	logger     *slog.Logger

	sessionID int
	history   []client.HistoryMessage
}

type Option func(*Conversation)

func WithRecorder(r Recorder) Option {
	return func(c *Conversation) { c.recorder = r }
}

// WithSource sets the origin stamped on recorded turn events.
func WithSource(s eventstream.EventSource) Option {
	return func(c *Conversation) { c.source = s }
}

// WithModule scopes questions to a knowledge module. Zero clears it.
func WithModule(id int) Option {
	return func(c *Conversation) {
		if id == 0 {
			c.moduleID = nil
			return
		}
		c.moduleID = &id
	}
}

// WithHistoryWindow sets how many trailing messages are sent as context.
func WithHistoryWindow(n int) Option {
	return func(c *Conversation) { c.window = n }
}

// WithUserConfig forwards the user's backend settings with every question.
func WithUserConfig(cfg map[string]any) Option {
	return func(c *Conversation) { c.userConfig = cfg }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) { c.logger = l }
}

func New(cl *client.Client, opts ...Option) *Conversation {
	c := &Conversation{
		client: cl,
		window: client.DefaultHistoryWindow,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID is the current server-side session, zero when detached.
func (c *Conversation) SessionID() int {
	return c.sessionID
}

// History returns a copy of the local message history.
func (c *Conversation) History() []client.HistoryMessage {
	return append([]client.HistoryMessage(nil), c.history...)
}

// Open attaches to sessionID. With zero it picks the most recently updated
// session, creating one when the user has none.
func (c *Conversation) Open(ctx context.Context, sessionID int) error {
	if sessionID != 0 {
		return c.Switch(ctx, sessionID)
	}

	sessions, err := c.client.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(sessions) == 0 {
		return c.NewSession(ctx, "")
	}

	return c.Switch(ctx, sessions[0].ID)
}

// Switch loads the history of an existing session and makes it current.
func (c *Conversation) Switch(ctx context.Context, sessionID int) error {
	history, err := c.client.SessionHistory(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading session %d: %w", sessionID, err)
	}

	c.sessionID = sessionID
	c.history = history
	c.logger.Debug("switched session", "session_id", sessionID, "messages", len(history))
	return nil
}

// NewSession creates a session and makes it current with an empty history.
func (c *Conversation) NewSession(ctx context.Context, name string) error {
	id, err := c.client.CreateSession(ctx, name)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	c.sessionID = id
	c.history = nil
	c.logger.Debug("created session", "session_id", id)
	return nil
}

// SetModule scopes following questions to a knowledge module. Zero clears it.
func (c *Conversation) SetModule(id int) {
	WithModule(id)(c)
}

// ModuleID is the current module, zero when unscoped.
func (c *Conversation) ModuleID() int {
	if c.moduleID == nil {
		return 0
	}
	return *c.moduleID
}

// Detach drops the current session so questions are not persisted server side.
func (c *Conversation) Detach() {
	c.sessionID = 0
	c.history = nil
}

// Clear deletes the current session's messages, keeping the session.
func (c *Conversation) Clear(ctx context.Context) error {
	if c.sessionID != 0 {
		if err := c.client.ClearSessionMessages(ctx, c.sessionID); err != nil {
			return fmt.Errorf("clearing session %d: %w", c.sessionID, err)
		}
	}

	c.history = nil
	return nil
}

// Ask sends question with the recent history and streams the answer through
// onUpdate. The turn is recorded and appended to the history whether or not
// it succeeded; a failed turn carries its fallback reply in the history.
func (c *Conversation) Ask(ctx context.Context, question string, onUpdate chatstream.UpdateFunc) (*storage.Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	turn := storage.NewTurn(c.sessionID, c.moduleID, question)

	req := client.AskRequest{
		Question:    question,
		ModuleID:    c.moduleID,
		Config:      c.userConfig,
		ChatHistory: client.RecentHistory(c.history, c.window),
	}
	if c.sessionID != 0 {
		id := c.sessionID
		req.SessionID = &id
	}

	answer, err := c.client.Ask(ctx, req, onUpdate)
	turn.Complete(answer, err)

	reply := answer
	if err != nil {
		reply = Fallback(err)
		c.logger.Warn("turn failed",
			"turn_id", turn.ID,
			"outcome", turn.Outcome,
			"error", err,
		)
	}

	c.history = append(c.history,
		client.HistoryMessage{Role: client.RoleUser, Content: question},
		client.HistoryMessage{Role: client.RoleAssistant, Content: reply},
	)

	c.record(turn)
	return turn, err
}

func (c *Conversation) record(turn *storage.Turn) {
	if c.recorder == nil {
		return
	}

	if !c.recorder.Enqueue(worker.Job{Turn: turn, Source: c.source}) {
		c.logger.Warn("turn not recorded", "turn_id", turn.ID)
	}
}

// Fallback returns the reply shown for a failed turn, or "" for nil.
func Fallback(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, chatstream.ErrEmptyResponse):
		return FallbackEmpty
	default:
		return FallbackError
	}
}
