package genaisdk

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jo-hoe/geminiocr/internal/common"
	"github.com/jo-hoe/geminiocr/internal/config"
	"github.com/jo-hoe/geminiocr/internal/i18n"
	"github.com/jo-hoe/geminiocr/internal/llm"
)

var _ llm.Client = (*Client)(nil)

// Client implements llm.Client with the official Gemini Go SDK.
type Client struct {
	settings config.GeminiSettings
	lang     i18n.Language
	log      *slog.Logger
	extra    []option.ClientOption
}

// New creates an SDK-backed client; extra options are applied after the API key and endpoint.
func New(settings config.GeminiSettings, lang i18n.Language, log *slog.Logger, extra ...option.ClientOption) *Client {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{settings: settings, lang: lang, log: log, extra: extra}
}

// Recognize replays the system protocol as a prior user turn and sends the image with the instruction.
func (c *Client) Recognize(ctx context.Context, image string, lang string) (string, error) {
	if c.settings.APIKey == "" {
		return "", llm.MissingAPIKey(c.lang)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(image))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	opts := []option.ClientOption{option.WithAPIKey(c.settings.APIKey)}
	if ep := strings.TrimSpace(c.settings.Endpoint); ep != "" {
		opts = append(opts, option.WithEndpoint(ep))
	}
	opts = append(opts, c.extra...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("genai client: %w", err)
	}
	defer func() { _ = cl.Close() }()

	model := c.settings.Model
	if model == "" {
		model = common.DefaultGeminiModel
	}
	m := cl.GenerativeModel(model)
	m.SetTemperature(float32(llm.Temperature(c.settings.Temperature)))
	m.SafetySettings = safetySettings()
	if llm.Enabled(c.settings.GoogleSearch) || llm.Enabled(c.settings.Thinking) {
		c.log.Debug("genai backend ignores googleSearch and Thinking", "model", model)
	}

	cs := m.StartChat()
	cs.History = []*genai.Content{
		{Role: "user", Parts: []genai.Part{genai.Text(llm.SystemProtocol)}},
	}
	resp, err := cs.SendMessage(ctx, genai.ImageData("png", data), genai.Text(llm.Instruction))
	if err != nil {
		return "", c.mapError(ctx, err)
	}

	text, ok := collectText(resp)
	if !ok {
		return "", llm.NoContent(c.lang)
	}
	if text == "" {
		c.log.Warn("genai returned an empty transcription", "model", model)
	}
	return text, nil
}

func (c *Client) mapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return llm.NoContent(c.lang)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return llm.NewStatusError(gerr.Code, []byte(gerr.Body))
	}
	return fmt.Errorf("genai generate: %w", err)
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	out := make([]*genai.SafetySetting, 0, len(categories))
	for _, cat := range categories {
		out = append(out, &genai.SafetySetting{Category: cat, Threshold: genai.HarmBlockNone})
	}
	return out
}

// collectText concatenates the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	first := resp.Candidates[0]
	if first == nil || first.Content == nil || first.Content.Parts == nil {
		return "", false
	}
	var sb strings.Builder
	for _, p := range first.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String()), true
}
