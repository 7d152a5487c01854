package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jo-hoe/geminiocr/internal/common"
	"github.com/jo-hoe/geminiocr/internal/config"
	"github.com/jo-hoe/geminiocr/internal/i18n"
	"github.com/jo-hoe/geminiocr/internal/llm"
)

var _ llm.Client = (*Client)(nil)

const (
	// Endpoints
	apiVersionPath = "/v1beta/models/"
	actionGenerate = ":generateContent"

	// Content roles
	roleUser = "user"

	// Timeouts
	defaultTimeout = 60 * time.Second

	// Thinking budget sentinel for "unlimited"
	thinkingBudgetUnlimited = -1

	thresholdBlockNone = "BLOCK_NONE"
)

// Sent in this order.
var safetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// Doer is the HTTP capability used to send the request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options carries everything a single recognition needs.
type Options struct {
	Config     config.GeminiSettings
	HTTPClient Doer          // defaults to an *http.Client with a 60s timeout
	Language   i18n.Language // language of user-facing error messages
	Logger     *slog.Logger  // optional
}

// Client implements llm.Client on top of Recognize with fixed settings.
type Client struct {
	settings   config.GeminiSettings
	httpClient Doer
	lang       i18n.Language
	log        *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.httpClient = d }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Gemini recognition client. Settings are not validated here;
// a missing API key surfaces on the first Recognize call.
func New(settings config.GeminiSettings, lang i18n.Language, opts ...Option) *Client {
	c := &Client{
		settings:   settings,
		httpClient: newHTTPClient(),
		lang:       lang,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// Recognize implements llm.Client.
func (c *Client) Recognize(ctx context.Context, image string, lang string) (string, error) {
	return Recognize(ctx, image, lang, Options{
		Config:     c.settings,
		HTTPClient: c.httpClient,
		Language:   c.lang,
		Logger:     c.log,
	})
}

// Recognize sends image (base64, tagged image/png) to the generateContent
// endpoint and returns the concatenated, trimmed text of the first candidate.
// lang is accepted for symmetry with other backends and does not change the request.
// Exactly one request is issued; failures are returned without retry.
func Recognize(ctx context.Context, image, lang string, opts Options) (string, error) {
	cfg := opts.Config
	if cfg.APIKey == "" {
		return "", llm.MissingAPIKey(opts.Language)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient()
	}

	u := apiURL(cfg.Endpoint, cfg.Model)
	bodyBytes, err := json.Marshal(buildRequestBody(image, cfg))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// The bound holds for injected clients too.
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set(common.HeaderContentType, common.ContentTypeJSON)
	req.Header.Set(common.HeaderGoogAPIKey, cfg.APIKey)

	log.Debug("gemini request", "url", u, "lang", lang, "bytes", len(bodyBytes))
	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("http do: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	log.Debug("gemini response", "status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", llm.NewStatusError(resp.StatusCode, respBytes)
	}

	text, finish, ok := extractText(respBytes)
	if !ok {
		return "", llm.NoContent(opts.Language)
	}
	if text == "" {
		log.Warn("gemini returned an empty transcription", "url", u, "finish_reason", finish)
	}
	return text, nil
}

func apiURL(endpoint, model string) string {
	if endpoint == "" {
		endpoint = common.DefaultGeminiEndpoint
	}
	if model == "" {
		model = common.DefaultGeminiModel
	}
	return endpoint + apiVersionPath + model + actionGenerate
}

func buildRequestBody(image string, cfg config.GeminiSettings) generateContentRequest {
	req := generateContentRequest{
		Contents: []content{
			{
				Role:  roleUser,
				Parts: []part{{Text: llm.SystemProtocol}},
			},
			{
				Role: roleUser,
				Parts: []part{
					{InlineData: &inlineData{MimeType: common.MimeImagePNG, Data: image}},
					{Text: llm.Instruction},
				},
			},
		},
		GenerationConfig: generationConfig{
			Temperature: llm.Temperature(cfg.Temperature),
		},
		SafetySettings: make([]safetySetting, 0, len(safetyCategories)),
	}
	if llm.Enabled(cfg.GoogleSearch) {
		req.Tools = []tool{{GoogleSearch: &googleSearch{}}}
	}
	if llm.Enabled(cfg.Thinking) {
		req.GenerationConfig.ThinkingConfig = &thinkingConfig{ThinkingBudget: thinkingBudgetUnlimited}
	}
	for _, category := range safetyCategories {
		req.SafetySettings = append(req.SafetySettings, safetySetting{Category: category, Threshold: thresholdBlockNone})
	}
	return req
}

// extractText returns false when the first candidate, its content or its parts are missing.
func extractText(body []byte) (text, finishReason string, ok bool) {
	var out generateContentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", "", false
	}
	if len(out.Candidates) == 0 {
		return "", "", false
	}
	first := out.Candidates[0]
	if first.Content == nil || first.Content.Parts == nil {
		return "", first.FinishReason, false
	}
	var sb strings.Builder
	for _, p := range first.Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), first.FinishReason, true
}
