// Package kafka publishes turn events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/devassist/pkg/eventstream"
	"github.com/papercomputeco/devassist/pkg/logger"
)

// DefaultTopic is the topic turn events are written to.
const DefaultTopic = "devassist.turns"

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers are the bootstrap broker addresses (e.g., "localhost:9092").
	Brokers []string

	// Topic is the destination topic. Defaults to DefaultTopic.
	Topic string

	// WriteTimeout bounds each publish. Defaults to 10 seconds.
	WriteTimeout time.Duration
}

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher implements eventstream.Publisher over a kafka-go Writer.
// Messages are keyed by session ID so one session's turns stay ordered
// within a partition.
type Publisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewPublisher creates a Kafka publisher. Connections are made lazily on the
// first publish.
func NewPublisher(c Config, log *slog.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, eventstream.ErrNoBrokers
	}
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	return newPublisher(w, c, log), nil
}

func newPublisher(w messageWriter, c Config, log *slog.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return &Publisher{
		writer:  w,
		topic:   c.Topic,
		timeout: c.WriteTimeout,
		logger:  log,
	}
}

// PublishTurn writes one event as a JSON message.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	msg, err := message(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing turn %s to %s: %w", event.Turn.ID, p.topic, err)
	}

	p.logger.Debug("published turn event",
		"topic", p.topic,
		"event_id", event.EventID,
		"session_id", event.Turn.SessionID,
	)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func message(event *eventstream.TurnCompletedEvent) (kafkago.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshaling turn event: %w", err)
	}

	return kafkago.Message{
		Key:   []byte(strconv.Itoa(event.Turn.SessionID)),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: []byte(strconv.Itoa(event.SchemaVersion))},
		},
		Time: event.EmittedAt,
	}, nil
}
