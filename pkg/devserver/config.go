// Package devserver is an in-memory stand-in for the Developer Assistant
// backend. It serves the same HTTP surface the CLI consumes, streams canned
// answers word by word, and is used for local development and tests.
package devserver

import "time"

const (
	// DefaultListenAddr is the address the mock backend listens on.
	DefaultListenAddr = ":8000"

	// DefaultFailTrigger makes /api/ask stream a server error when the
	// question contains it.
	DefaultFailTrigger = "#fail"
)

// Config is the mock backend configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000").
	ListenAddr string

	// Users maps usernames to passwords. Defaults to a single dev/dev user.
	Users map[string]string

	// MustChangePassword lists users whose login reports that the password
	// must be changed before anything else.
	MustChangePassword []string

	// FailTrigger is the substring that turns an answer into a streamed
	// server error. Empty uses DefaultFailTrigger.
	FailTrigger string

	// ChunkDelay is slept between streamed fragments.
	ChunkDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if len(c.Users) == 0 {
		c.Users = map[string]string{"dev": "dev"}
	}
	if c.FailTrigger == "" {
		c.FailTrigger = DefaultFailTrigger
	}
	return c
}
