package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random UUIDv4 string.
func NewID() string {
	return uuid.NewString()
}

// RequestID returns incoming when it is a usable client-supplied id, otherwise a fresh one.
func RequestID(incoming string) string {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" || len(incoming) > 128 {
		return NewID()
	}
	for _, r := range incoming {
		if r < 0x21 || r > 0x7e {
			return NewID()
		}
	}
	return incoming
}
