package sse

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns a sequence of byte buffers into UTF-8 text. A multi-byte
// character split across two buffers is held back until the rest of it
// arrives, so no call ever emits half a rune. Invalid sequences are replaced
// with U+FFFD.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	t    transform.Transformer
	tail []byte
	dst  []byte
}

// NewDecoder returns a streaming UTF-8 decoder.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode returns the text decoded from the bytes buffered so far plus p.
// Trailing bytes of an incomplete character are kept for the next call.
func (d *Decoder) Decode(p []byte) string {
	return d.decode(p, false)
}

// Flush decodes whatever is still buffered, replacing an incomplete trailing
// character with U+FFFD, and resets the decoder.
func (d *Decoder) Flush() string {
	s := d.decode(nil, true)
	d.t.Reset()
	return s
}

// Buffered reports how many bytes are held back waiting for the rest of a
// character.
func (d *Decoder) Buffered() int {
	return len(d.tail)
}

func (d *Decoder) decode(p []byte, atEOF bool) string {
	src := p
	if len(d.tail) > 0 {
		src = append(d.tail, p...)
		d.tail = nil
	}

	var out strings.Builder
	for {
		// Every invalid byte may expand to a 3 byte replacement character.
		if need := 3*len(src) + utf8.UTFMax; cap(d.dst) < need {
			d.dst = make([]byte, need)
		}
		dst := d.dst[:cap(d.dst)]

		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch err {
		case transform.ErrShortDst:
			d.dst = make([]byte, 2*cap(d.dst))
			continue
		case transform.ErrShortSrc:
			d.tail = append([]byte(nil), src...)
		}
		return out.String()
	}
}
