package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 * 1024

// Sentinels matched by APIErrors with the corresponding status.
var (
	ErrUnauthorized = errors.New("not authorized")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int

	// Message is the backend's "detail" or "error" field when the body is
	// JSON, otherwise the raw body.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match ErrUnauthorized for 401 and ErrNotFound for 404.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body),
	}
}

// errorMessage extracts a message from FastAPI style {"detail": ...} or
// {"error": ...} bodies, falling back to the trimmed body.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		for _, key := range []string{"detail", "error", "message"} {
			if v := parsed.Get(key); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	return strings.TrimSpace(string(body))
}
