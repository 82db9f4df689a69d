package chatstream

import (
	"errors"
	"fmt"
)

// Kind classifies a StreamError.
type Kind int

const (
	// TransportFailure means the byte stream failed or was interrupted before
	// completion. Any text assembled so far is discarded.
	TransportFailure Kind = iota + 1

	// ServerReportedError means a payload carried an "error" field. The
	// server's message is kept verbatim.
	ServerReportedError

	// EmptyResponse means the stream ended normally without any text.
	EmptyResponse
)

func (k Kind) String() string {
	switch k {
	case TransportFailure:
		return "transport failure"
	case ServerReportedError:
		return "server error"
	case EmptyResponse:
		return "empty response"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is checks against a *StreamError of the same kind.
var (
	ErrTransportFailure = &StreamError{Kind: TransportFailure}
	ErrServerReported   = &StreamError{Kind: ServerReportedError}
	ErrEmptyResponse    = &StreamError{Kind: EmptyResponse}
)

// StreamError is the terminal failure of one Consume call.
type StreamError struct {
	Kind Kind

	// Message is the server-supplied text for ServerReportedError.
	Message string

	// Cause is the underlying read error for TransportFailure.
	Cause error
}

func (e *StreamError) Error() string {
	switch {
	case e.Kind == ServerReportedError:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return e.Kind.String()
	}
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *StreamError of the same kind.
func (e *StreamError) Is(target error) bool {
	t, ok := target.(*StreamError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *StreamError in err's chain, or 0.
func KindOf(err error) Kind {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func transportFailure(cause error) *StreamError {
	return &StreamError{Kind: TransportFailure, Cause: cause}
}

// NewTransportFailure wraps a failure that happened before the stream could
// be read at all, such as a refused connection.
func NewTransportFailure(cause error) error {
	return transportFailure(cause)
}
