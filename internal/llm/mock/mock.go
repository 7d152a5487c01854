package mock

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jo-hoe/geminiocr/internal/config"
	"github.com/jo-hoe/geminiocr/internal/llm"
)

var _ llm.Client = (*Client)(nil)

// Client is an offline recognizer that echoes what it received.
type Client struct {
	delay  time.Duration
	prefix string
}

// New creates a mock client from cfg.
func New(cfg config.MockSettings) *Client {
	return &Client{delay: cfg.Delay, prefix: cfg.Prefix}
}

// Recognize waits for the configured delay and describes the image it was given.
func (c *Client) Recognize(ctx context.Context, image string, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	size := base64.StdEncoding.DecodedLen(len(image))
	if raw, err := base64.StdEncoding.DecodeString(image); err == nil {
		size = len(raw)
	}
	if lang == "" {
		lang = "auto"
	}
	return fmt.Sprintf("%s (%s, %d bytes)", c.prefix, lang, size), nil
}
