// Package eventstream defines the events emitted when a chat turn completes
// and the publishers that deliver them.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/devassist/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a question's answer stream ends,
	// successfully or not.
	EventTypeTurnCompleted = "devassist.turn.completed"
)

// TurnCompletedEvent is a transport-neutral event payload for a finished turn.
type TurnCompletedEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Source        EventSource     `json:"source"`
	RequestMeta   TurnRequestMeta `json:"request_meta"`
	Turn          storage.Turn    `json:"turn"`
}

// EventSource identifies where the turn originated.
type EventSource struct {
	Client   string `json:"client"`
	Backend  string `json:"backend"`
	Username string `json:"username,omitempty"`
}

// TurnRequestMeta captures request lifecycle metadata for the event.
type TurnRequestMeta struct {
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	DurationMs  int64           `json:"duration_ms"`
	Outcome     storage.Outcome `json:"outcome"`
}

// NewTurnCompletedEvent builds the event for a completed turn.
func NewTurnCompletedEvent(turn *storage.Turn, source EventSource) *TurnCompletedEvent {
	return &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		RequestMeta: TurnRequestMeta{
			StartedAt:   turn.StartedAt,
			CompletedAt: turn.CompletedAt,
			DurationMs:  turn.Duration().Milliseconds(),
			Outcome:     turn.Outcome,
		},
		Turn: *turn,
	}
}
