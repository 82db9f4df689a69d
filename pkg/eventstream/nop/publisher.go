// Package nop provides the publisher used when event_stream.provider is
// "nop": events are checked, counted and dropped.
package nop

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/papercomputeco/devassist/pkg/eventstream"
	"github.com/papercomputeco/devassist/pkg/logger"
)

// Publisher drops turn events. The log records what would have been sent.
type Publisher struct {
	logger  *slog.Logger
	dropped atomic.Int64
}

// NewPublisher creates a dropping publisher. A nil logger discards output.
func NewPublisher(log *slog.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{logger: log}
}

// PublishTurn rejects nil events and drops the rest.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	p.dropped.Add(1)
	p.logger.DebugContext(ctx, "turn event not published",
		"event_id", event.EventID,
		"turn_id", event.Turn.ID,
		"outcome", event.Turn.Outcome,
	)
	return nil
}

// Dropped returns how many events PublishTurn has accepted.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

func (p *Publisher) Close() error {
	return nil
}
