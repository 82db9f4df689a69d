package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	stateFile = "state.json"
)

// State is the persisted login state. It holds a bearer token, so it is
// written readable by the owner only.
type State struct {
	// BaseURL is the backend the token was issued by.
	BaseURL string `json:"base_url"`

	Username string `json:"username"`
	Token    string `json:"token"`
	Role     int    `json:"role"`

	// SessionID is the chat session resumed by the next "devassist chat".
	SessionID int `json:"session_id,omitempty"`
}

// LoggedIn reports whether s carries a token.
func (s *State) LoggedIn() bool {
	return s != nil && s.Token != ""
}

// LoadState loads the state from a target .devassist/state.json.
// Returns nil, nil if no state exists (logged out).
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadState(overrideDir string) (*State, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}

	return state, nil
}

// SaveState persists the state to a target .devassist/state.json.
func (m *Manager) SaveState(state *State, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	path := filepath.Join(dir, stateFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restricting state permissions: %w", err)
	}

	return nil
}

// ClearState removes the state file, logging the user out.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, stateFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing state: %w", err)
	}

	return nil
}
