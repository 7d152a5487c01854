package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jo-hoe/geminiocr/internal/i18n"
)

var (
	// ErrMissingAPIKey is returned before any network call when no API key is configured.
	ErrMissingAPIKey = errors.New("missing api key")
	// ErrNoContent is returned when a successful response carries no usable candidate.
	ErrNoContent = errors.New("no valid content returned")
)

// localizedError carries a user-facing message while still matching its sentinel with errors.Is.
type localizedError struct {
	kind error
	msg  string
}

func (e *localizedError) Error() string { return e.msg }
func (e *localizedError) Unwrap() error { return e.kind }

// MissingAPIKey returns ErrMissingAPIKey with a message in lang.
func MissingAPIKey(lang i18n.Language) error {
	return &localizedError{kind: ErrMissingAPIKey, msg: i18n.T(lang, i18n.KeyMissingAPIKey)}
}

// NoContent returns ErrNoContent with a message in lang.
func NoContent(lang i18n.Language) error {
	return &localizedError{kind: ErrNoContent, msg: i18n.T(lang, i18n.KeyNoContent)}
}

// StatusError reports a non-success HTTP status from the remote service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Http Request Error\nHttp Status: %d\n%s", e.StatusCode, e.Body)
}

// NewStatusError builds a StatusError, serializing a JSON body compactly and
// keeping any other body as trimmed text.
func NewStatusError(status int, body []byte) *StatusError {
	return &StatusError{StatusCode: status, Body: serializeBody(body)}
}

func serializeBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if json.Valid(trimmed) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
	}
	return strings.TrimSpace(string(body))
}
