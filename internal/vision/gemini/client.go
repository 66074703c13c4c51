package gemini

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/DandaAkhilReddy/reddy/internal/vision"
)

// Config for the Gemini vision client.
type Config struct {
	APIKey      string
	Model       string // e.g., "gemini-1.5-pro"
	Temperature float32
	MaxTokens   int
}

type Client struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

// NewClient dials the Gemini API. The caller owns the client and must Close it.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, client: cl, logger: logger}, nil
}

func (c *Client) Close() error { return c.client.Close() }

// Name implements vision.Client.
func (c *Client) Name() string { return "gemini" }

// AnalyzeBody implements vision.Client.
func (c *Client) AnalyzeBody(ctx context.Context, photos []vision.Photo, user vision.UserContext) (*vision.RawResponse, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("gemini.analyze.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"photos", len(photos),
	)

	m := c.client.GenerativeModel(c.cfg.Model)
	temp := c.cfg.Temperature
	maxTokens := int32(c.cfg.MaxTokens)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temp,
		MaxOutputTokens:  &maxTokens,
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(vision.BuildSystemPrompt())},
	}

	parts := []genai.Part{genai.Text(vision.BuildUserPrompt(user))}
	for _, p := range photos {
		parts = append(parts, &genai.Blob{
			MIMEType: http.DetectContentType(p.Data),
			Data:     p.Data,
		})
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			err = &vision.ProviderError{Provider: "gemini", Status: gerr.Code, Body: gerr.Message}
		}
		c.logger.Error("gemini.analyze.error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	txt := firstText(resp)
	if txt == "" {
		return nil, errors.New("gemini: empty response")
	}

	out := &vision.RawResponse{
		Content: strings.TrimSpace(txt),
		Model:   c.cfg.Model,
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = resp.Candidates[0].FinishReason.String()
	}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	out.Latency = time.Since(start)

	c.logger.Info("gemini.analyze.ok",
		"req_id", rid,
		"finish_reason", out.FinishReason,
		"output_tokens", out.OutputTokens,
		"elapsed_ms", out.Latency.Milliseconds(),
	)
	return out, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
