package client

import (
	"context"
	"fmt"
	"net/http"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. The returned token is not
// applied to c; create a new Client with WithToken to use it.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/login", loginRequest{
		Username: username,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	return &out, nil
}

// UserInfo returns the decoded token claims the backend knows the caller by.
func (c *Client) UserInfo(ctx context.Context) (map[string]any, error) {
	var out struct {
		User map[string]any `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/user-info", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UserConfig returns the caller's answer preferences, which are forwarded
// with every question.
func (c *Client) UserConfig(ctx context.Context) (map[string]any, error) {
	var out struct {
		envelope
		Config map[string]any `json:"config"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/get_user_config", nil, &out); err != nil {
		return nil, err
	}
	if err := out.check("loading user config"); err != nil {
		return nil, err
	}
	return out.Config, nil
}

func (e envelope) check(action string) error {
	if e.Success {
		return nil
	}
	if e.Error == "" {
		return fmt.Errorf("%s: backend reported failure", action)
	}
	return fmt.Errorf("%s: %s", action, e.Error)
}

// ChangePassword sets a new password for username and clears any pending
// must-change flag. The backend does not ask for the old password.
func (c *Client) ChangePassword(ctx context.Context, username, newPassword string) error {
	if username == "" || newPassword == "" {
		return fmt.Errorf("username and new password are required")
	}

	var out envelope
	body := struct {
		Username    string `json:"username"`
		NewPassword string `json:"newPassword"`
	}{username, newPassword}
	if err := c.doJSON(ctx, http.MethodPost, "/api/change-password", body, &out); err != nil {
		return err
	}
	return out.check("changing password")
}

// SaveUserConfig replaces the caller's answer preferences.
func (c *Client) SaveUserConfig(ctx context.Context, cfg map[string]any) error {
	if len(cfg) == 0 {
		return fmt.Errorf("no config provided")
	}

	var out envelope
	body := struct {
		Config map[string]any `json:"config"`
	}{cfg}
	if err := c.doJSON(ctx, http.MethodPost, "/api/save_user_config", body, &out); err != nil {
		return err
	}
	return out.check("saving user config")
}
