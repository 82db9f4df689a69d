package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListSessions returns the caller's sessions, most recently updated first.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var out struct {
		envelope
		Sessions []Session `json:"sessions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/sessions", nil, &out); err != nil {
		return nil, err
	}
	if err := out.check("listing sessions"); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// CreateSession creates a session and returns its id. An empty name becomes
// DefaultSessionName.
func (c *Client) CreateSession(ctx context.Context, name string) (int, error) {
	if name == "" {
		name = DefaultSessionName
	}

	var out struct {
		envelope
		SessionID int `json:"session_id"`
	}
	body := map[string]string{"session_name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/sessions", body, &out); err != nil {
		return 0, err
	}
	if err := out.check("creating session"); err != nil {
		return 0, err
	}
	return out.SessionID, nil
}

// RenameSession changes a session's display name.
func (c *Client) RenameSession(ctx context.Context, id int, name string) error {
	if name == "" {
		return fmt.Errorf("session name is required")
	}

	var out envelope
	body := struct {
		SessionID int    `json:"session_id"`
		Name      string `json:"session_name"`
	}{id, name}
	if err := c.doJSON(ctx, http.MethodPut, sessionPath(id), body, &out); err != nil {
		return err
	}
	return out.check("renaming session")
}

// DeleteSession removes a session and its messages.
func (c *Client) DeleteSession(ctx context.Context, id int) error {
	var out envelope
	if err := c.doJSON(ctx, http.MethodDelete, sessionPath(id), nil, &out); err != nil {
		return err
	}
	return out.check("deleting session")
}

// SessionHistory returns a session's messages, oldest first.
func (c *Client) SessionHistory(ctx context.Context, id int) ([]HistoryMessage, error) {
	var out struct {
		envelope
		History []HistoryMessage `json:"history"`
	}
	if err := c.doJSON(ctx, http.MethodGet, sessionPath(id)+"/history", nil, &out); err != nil {
		return nil, err
	}
	if err := out.check("loading history"); err != nil {
		return nil, err
	}
	return out.History, nil
}

// ClearSessionMessages deletes a session's messages but keeps the session.
func (c *Client) ClearSessionMessages(ctx context.Context, id int) error {
	var out envelope
	if err := c.doJSON(ctx, http.MethodDelete, sessionPath(id)+"/messages", nil, &out); err != nil {
		return err
	}
	return out.check("clearing session")
}

// SaveMessage appends a message to a session.
func (c *Client) SaveMessage(ctx context.Context, sessionID int, role, content string) error {
	var out envelope
	body := struct {
		SessionID int    `json:"session_id"`
		Role      string `json:"role"`
		Content   string `json:"content"`
	}{sessionID, role, content}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/messages", body, &out); err != nil {
		return err
	}
	return out.check("saving message")
}

// ListModules returns the modules visible to the caller, optionally limited
// to one team.
func (c *Client) ListModules(ctx context.Context, teamID *int) ([]Module, error) {
	path := "/api/modules"
	if teamID != nil {
		path += "?" + url.Values{"team_id": {strconv.Itoa(*teamID)}}.Encode()
	}

	var out struct {
		Modules []Module `json:"modules"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Modules, nil
}

func sessionPath(id int) string {
	return "/api/chat/sessions/" + strconv.Itoa(id)
}
