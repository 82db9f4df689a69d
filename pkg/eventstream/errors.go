package eventstream

import "errors"

var (
	// ErrNilTurnEvent indicates a nil turn event payload was provided to a publisher.
	ErrNilTurnEvent = errors.New("nil turn event")

	// ErrNoBrokers indicates a broker-backed publisher was configured without brokers.
	ErrNoBrokers = errors.New("no brokers configured")

	// ErrNoTopic indicates a broker-backed publisher was configured without a topic.
	ErrNoTopic = errors.New("no topic configured")
)
