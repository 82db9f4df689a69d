// Package inmemory provides a map-backed storage driver. Turns live for the
// lifetime of the process.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/papercomputeco/devassist/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards turns
	mu sync.RWMutex

	// turns maps turn IDs to turns
	turns map[string]*storage.Turn
}

// NewDriver creates a new in-memory storer.
func NewDriver() *Driver {
	return &Driver{
		turns: make(map[string]*storage.Turn),
	}
}

// Put stores a copy of turn. Returns false if the ID is already stored.
func (d *Driver) Put(_ context.Context, turn *storage.Turn) (bool, error) {
	if turn == nil {
		return false, errors.New("cannot store nil turn")
	}
	if turn.ID == "" {
		return false, errors.New("cannot store turn without an ID")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.turns[turn.ID]; ok {
		return false, nil
	}

	stored := *turn
	d.turns[turn.ID] = &stored
	return true, nil
}

// Get retrieves a turn by its ID.
func (d *Driver) Get(_ context.Context, id string) (*storage.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	turn, ok := d.turns[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	out := *turn
	return &out, nil
}

// List returns the turns of one session, oldest first.
func (d *Driver) List(_ context.Context, sessionID int) ([]*storage.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var result []*storage.Turn
	for _, turn := range d.turns {
		if turn.SessionID != sessionID {
			continue
		}
		out := *turn
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartedAt.Before(result[j].StartedAt)
	})

	return result, nil
}

// Close is a no-op for the in-memory storer.
func (d *Driver) Close() error {
	return nil
}
