package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/devassist/pkg/chatstream"
)

// Outcome records how a turn's answer stream ended.
type Outcome string

const (
	OutcomeAnswered         Outcome = "answered"
	OutcomeServerError      Outcome = "server_error"
	OutcomeEmptyResponse    Outcome = "empty_response"
	OutcomeTransportFailure Outcome = "transport_failure"

	// OutcomeRejected is a non-stream failure, such as an HTTP error status.
	OutcomeRejected Outcome = "rejected"
)

// OutcomeOf classifies the error returned by an ask.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeAnswered
	}
	switch chatstream.KindOf(err) {
	case chatstream.ServerReportedError:
		return OutcomeServerError
	case chatstream.EmptyResponse:
		return OutcomeEmptyResponse
	case chatstream.TransportFailure:
		return OutcomeTransportFailure
	default:
		return OutcomeRejected
	}
}

// Turn is one question and its answer.
type Turn struct {
	ID string `json:"id"`

	// SessionID is the backend session, 0 when the question was asked
	// outside of one.
	SessionID int  `json:"session_id"`
	ModuleID  *int `json:"module_id,omitempty"`

	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Outcome  Outcome `json:"outcome"`

	// Error is the failure message for outcomes other than answered.
	Error string `json:"error,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewTurn starts a turn with a fresh ID.
func NewTurn(sessionID int, moduleID *int, question string) *Turn {
	return &Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ModuleID:  moduleID,
		Question:  question,
		StartedAt: time.Now().UTC(),
	}
}

// Complete records the result of the ask that answered t.
func (t *Turn) Complete(answer string, err error) {
	t.CompletedAt = time.Now().UTC()
	t.Outcome = OutcomeOf(err)
	if err != nil {
		t.Answer = ""
		t.Error = err.Error()
		return
	}
	t.Answer = answer
}

// Duration is how long the answer took.
func (t *Turn) Duration() time.Duration {
	if t.CompletedAt.IsZero() {
		return 0
	}
	return t.CompletedAt.Sub(t.StartedAt)
}
