package llm

import (
	"context"
)

// Client defines the capability to recognize the text in an image.
type Client interface {
	// Recognize sends one base64-encoded image to the backend and returns the
	// transcription as Markdown. lang is a language hint; backends may ignore it.
	Recognize(ctx context.Context, image string, lang string) (string, error)
}
