// Package storage persists the local transcript of chat turns: each question
// sent to the backend together with the assembled answer and how the stream
// ended.
package storage

import (
	"context"
)

// Driver defines the interface for persisting and retrieving turns in a
// storage backend.
type Driver interface {
	// Put stores a turn. Returns true if the turn was newly inserted, false
	// if a turn with the same ID already exists, in which case Put is a no-op.
	Put(ctx context.Context, turn *Turn) (bool, error)

	// Get retrieves a turn by its ID.
	Get(ctx context.Context, id string) (*Turn, error)

	// List returns the turns of one session, oldest first.
	List(ctx context.Context, sessionID int) ([]*Turn, error)

	// Close closes the store and releases any resources.
	Close() error
}
