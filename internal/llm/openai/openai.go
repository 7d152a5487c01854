package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/jo-hoe/geminiocr/internal/config"
	"github.com/jo-hoe/geminiocr/internal/i18n"
	"github.com/jo-hoe/geminiocr/internal/llm"
)

var _ llm.Client = (*Client)(nil)

const defaultTimeout = 60 * time.Second

// Client implements llm.Client against an OpenAI-compatible chat completions endpoint.
type Client struct {
	api         *goopenai.Client
	apiKey      string
	model       string
	temperature float32
	lang        i18n.Language
}

// New creates a client for cfg. The API key is checked on each call, not here.
func New(cfg config.OpenAISettings, lang i18n.Language) *Client {
	return newWithHTTPClient(cfg, lang, &http.Client{Timeout: defaultTimeout})
}

func newWithHTTPClient(cfg config.OpenAISettings, lang i18n.Language, hc *http.Client) *Client {
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		apiCfg.BaseURL = base
	}
	apiCfg.HTTPClient = hc
	return &Client{
		api:         goopenai.NewClientWithConfig(apiCfg),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: float32(llm.Temperature(cfg.Temperature)),
		lang:        lang,
	}
}

// Recognize sends the system protocol and the image as a data URL and returns the first choice.
func (c *Client) Recognize(ctx context.Context, image string, lang string) (string, error) {
	if c.apiKey == "" {
		return "", llm.MissingAPIKey(c.lang)
	}

	resp, err := c.api.CreateChatCompletion(ctx, c.buildRequest(image))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.NoContent(c.lang)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) buildRequest(image string) goopenai.ChatCompletionRequest {
	return goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleSystem,
				Content: llm.SystemProtocol,
			},
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{
						Type:     goopenai.ChatMessagePartTypeImageURL,
						ImageURL: &goopenai.ChatMessageImageURL{URL: llm.PNGDataURL(image)},
					},
					{
						Type: goopenai.ChatMessagePartTypeText,
						Text: llm.Instruction,
					},
				},
			},
		},
		Temperature: c.temperature,
	}
}

// mapError turns HTTP-level failures reported by go-openai into *llm.StatusError.
func mapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &llm.StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &llm.StatusError{StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	return fmt.Errorf("chat completion: %w", err)
}
