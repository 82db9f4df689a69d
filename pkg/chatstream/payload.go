package chatstream

import (
	"github.com/tidwall/gjson"
)

// Payload is the decoded JSON object carried by one record's data line.
//
// Field presence follows the backend's loose typing: a key that is missing or
// null counts as absent, and done/error are read for truthiness rather than
// strict type, so {"done":1} ends a stream just like {"done":true}.
type Payload struct {
	// Chunk is the text fragment to append, nil when absent.
	Chunk *string

	// Done signals normal termination.
	Done bool

	// Error is a server-reported failure message, empty when absent.
	Error string
}

// ParsePayload decodes data as a JSON object. ok is false when data is not
// valid JSON or is not an object; such records are skipped by the assembler.
func ParsePayload(data string) (Payload, bool) {
	if !gjson.Valid(data) {
		return Payload{}, false
	}

	root := gjson.Parse(data)
	if !root.IsObject() {
		return Payload{}, false
	}

	var p Payload

	if chunk := root.Get("chunk"); chunk.Exists() && chunk.Type != gjson.Null {
		s := chunk.String()
		p.Chunk = &s
	}

	p.Done = truthy(root.Get("done"))

	if e := root.Get("error"); truthy(e) {
		p.Error = e.String()
	}

	return p, true
}

// truthy mirrors the loose boolean checks the backend's clients apply.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True, gjson.JSON:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return false
	}
}
