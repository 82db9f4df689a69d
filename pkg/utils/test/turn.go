package testutils

import (
	"time"

	"github.com/papercomputeco/devassist/pkg/storage"
)

// NewTestTurn creates an answered turn for testing.
func NewTestTurn(id string, session int, started time.Time) *storage.Turn {
	return &storage.Turn{
		ID:          id,
		SessionID:   session,
		Question:    "question " + id,
		Answer:      "answer " + id,
		Outcome:     storage.OutcomeAnswered,
		StartedAt:   started,
		CompletedAt: started.Add(time.Second),
	}
}
