package sse

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/papercomputeco/devassist/pkg/logger"
)

const defaultBufferSize = 4 * 1024

// Reader pulls records out of a byte stream. It reads from the source only
// when no complete record is queued, decodes the bytes as UTF-8, and splits
// the accumulated text on Separator.
//
// When a tee destination is configured every raw byte read from the source is
// written to it verbatim before any parsing, which lets callers dump the exact
// wire stream for diagnostics while still consuming parsed records:
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌──────────────────┐
// │  Reader.Next()   │──▶│  tee io.Writer   │
// └──────────────────┘   └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Record      │
// └──────────────────┘
type Reader struct {
	src    io.Reader
	tee    io.Writer
	dec    *Decoder
	buf    []byte
	logger *slog.Logger

	// pending is the text after the last separator seen so far.
	pending string
	queue   []string

	// err is sticky: once the source fails or ends, Next keeps returning it
	// after the queue has been drained.
	err error
}

// Option configures a Reader.
type Option func(*Reader)

// WithTee writes every raw byte read from the source to w.
func WithTee(w io.Writer) Option {
	return func(r *Reader) {
		r.tee = w
	}
}

// WithBufferSize sets the size of the read buffer. Values below 1 are ignored.
func WithBufferSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.buf = make([]byte, n)
		}
	}
}

// WithLogger sets the logger used for framing diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader returns a Reader over src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	r := &Reader{
		src:    src,
		dec:    NewDecoder(),
		buf:    make([]byte, defaultBufferSize),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the next complete record. It blocks on the source until one is
// available. At the end of the stream Next returns io.EOF; any text left
// without a terminating separator is discarded. A read failure is returned
// as-is once every record completed before it has been handed out.
func (r *Reader) Next() (*Record, error) {
	for {
		if len(r.queue) > 0 {
			raw := r.queue[0]
			r.queue = r.queue[1:]
			rec := ParseRecord(raw)
			return &rec, nil
		}

		if r.err != nil {
			return nil, r.err
		}

		r.fill()
	}
}

// Pending returns the text received after the last separator.
func (r *Reader) Pending() string {
	return r.pending
}

// fill performs exactly one read from the source.
func (r *Reader) fill() {
	n, err := r.src.Read(r.buf)
	if n > 0 {
		if r.tee != nil {
			if _, werr := r.tee.Write(r.buf[:n]); werr != nil {
				r.err = fmt.Errorf("writing raw stream: %w", werr)
				return
			}
		}

		var records []string
		records, r.pending = Split(r.pending, r.dec.Decode(r.buf[:n]))
		r.queue = append(r.queue, records...)
	}

	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		if rest := r.pending + r.dec.Flush(); rest != "" {
			r.logger.Debug("discarding unterminated record at end of stream",
				"bytes", len(rest),
			)
		}
		r.pending = ""
		r.err = io.EOF
	default:
		r.err = err
	}
}
