// Package sse provides the framing layer for the Developer Assistant chat
// stream. The backend answers POST /api/ask with a plain-text body made of
// blank-line separated records, each carrying one "data:" line:
//
//	data: {"chunk":"Hel"}\n\n
//	data: {"chunk":"lo"}\n\n
//	data: {"done":true}\n\n
//
// The framing looks like Server-Sent Events but is consumed from a raw byte
// stream, so this package owns the whole job: decoding UTF-8 across read
// boundaries, splitting on "\n\n" and extracting the data payload. It does
// not interpret payloads; see pkg/chatstream for that.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
package sse

import "strings"

// Separator terminates every record in the stream.
const Separator = "\n\n"

// dataPrefix is the only field recognized inside a record.
const dataPrefix = "data:"

// Record is one blank-line delimited unit of the stream.
type Record struct {
	// Raw is the record text as it appeared between separators.
	Raw string

	// Data is the trimmed payload following the "data:" prefix.
	Data string

	// HasData reports whether the record started with "data:" once trimmed.
	// Records without it carry nothing meaningful and are skipped by callers.
	HasData bool
}

// ParseRecord trims raw and extracts the payload after a leading "data:".
// Only the first prefix is stripped; the remaining text is trimmed again and
// returned verbatim, newlines included.
func ParseRecord(raw string) Record {
	rec := Record{Raw: raw}

	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, dataPrefix) {
		return rec
	}

	rec.HasData = true
	rec.Data = strings.TrimSpace(strings.TrimPrefix(trimmed, dataPrefix))
	return rec
}
