// Package chatstream assembles the Developer Assistant's streamed answers.
//
// The backend sends an answer as a sequence of records (see pkg/sse) whose
// JSON payloads carry text fragments ("chunk"), a completion flag ("done") or
// a failure message ("error"). The Assembler folds those payloads into a
// single growing message, reporting every intermediate state to a callback
// so the caller can re-render as text arrives.
package chatstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/papercomputeco/devassist/pkg/logger"
	"github.com/papercomputeco/devassist/pkg/sse"
	"github.com/papercomputeco/devassist/pkg/utils"
)

// UpdateFunc receives the accumulated message after each appended fragment.
// Successive calls observe strictly non-shrinking strings, each a prefix of
// the next.
type UpdateFunc func(message string)

// Assembler consumes chat streams. It holds configuration only; every Consume
// call owns its own buffers, so one Assembler may serve many streams, though
// each stream must be consumed by a single goroutine.
type Assembler struct {
	logger  *slog.Logger
	tee     io.Writer
	bufSize int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger for stream diagnostics. Malformed records are
// reported at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTee copies every raw byte of each consumed stream to w.
func WithTee(w io.Writer) Option {
	return func(a *Assembler) {
		a.tee = w
	}
}

// WithReadBufferSize sets the size of each read from the underlying stream.
func WithReadBufferSize(n int) Option {
	return func(a *Assembler) {
		a.bufSize = n
	}
}

// New returns an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Consume reads r to completion, or until a payload signals done or error,
// and returns the assembled message.
//
// Exactly one terminal outcome is produced:
//   - the full message and a nil error,
//   - a *StreamError of kind ServerReportedError as soon as a payload carries
//     an "error" field, even if fragments were already delivered,
//   - a *StreamError of kind EmptyResponse when the stream carried no text,
//   - a *StreamError of kind TransportFailure wrapping the read error.
//
// onUpdate may be nil. It is called synchronously, in stream order, from the
// calling goroutine. Consume does not close r.
func (a *Assembler) Consume(ctx context.Context, r io.Reader, onUpdate UpdateFunc) (string, error) {
	opts := []sse.Option{sse.WithLogger(a.logger)}
	if a.tee != nil {
		opts = append(opts, sse.WithTee(a.tee))
	}
	if a.bufSize > 0 {
		opts = append(opts, sse.WithBufferSize(a.bufSize))
	}
	reader := sse.NewReader(r, opts...)

	var (
		msg       strings.Builder
		fragments int
		skipped   int
	)

	for {
		if err := ctx.Err(); err != nil {
			return "", transportFailure(err)
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", transportFailure(err)
		}

		if !rec.HasData || rec.Data == "" {
			continue
		}

		payload, ok := ParsePayload(rec.Data)
		if !ok {
			skipped++
			a.logger.Debug("skipping malformed stream record",
				"data", utils.Truncate(rec.Data, 64),
			)
			continue
		}

		if payload.Error != "" {
			a.logger.Debug("server reported stream error",
				"error", payload.Error,
				"fragments", fragments,
			)
			return "", &StreamError{Kind: ServerReportedError, Message: payload.Error}
		}

		if payload.Chunk != nil {
			fragments++
			msg.WriteString(*payload.Chunk)
			if onUpdate != nil {
				onUpdate(msg.String())
			}
		}

		if payload.Done {
			break
		}
	}

	a.logger.Debug("stream finished",
		"fragments", fragments,
		"skipped", skipped,
		"bytes", msg.Len(),
	)

	if msg.Len() == 0 {
		return "", &StreamError{Kind: EmptyResponse}
	}

	return msg.String(), nil
}
