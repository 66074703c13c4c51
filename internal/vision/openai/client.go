package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DandaAkhilReddy/reddy/internal/vision"
)

// Name implements vision.Client.
func (c *Client) Name() string { return "openai" }

// AnalyzeBody implements vision.Client using chat/completions with inline
// base64 image parts.
func (c *Client) AnalyzeBody(ctx context.Context, photos []vision.Photo, user vision.UserContext) (*vision.RawResponse, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("openai.analyze.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"photos", len(photos),
	)

	content := []map[string]any{
		{"type": "text", "text": vision.BuildUserPrompt(user)},
	}
	for _, p := range photos {
		content = append(content, map[string]any{
			"type": "image_url",
			"image_url": map[string]any{
				"url":    dataURL(p.Data),
				"detail": "high",
			},
		})
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"max_tokens":      c.cfg.MaxTokens,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": vision.BuildSystemPrompt()},
			{"role": "user", "content": content},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("openai.analyze.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var cc struct {
		Model   string `json:"model"`
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Message      struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("no choices in openai response")
	}

	c.logger.Info("openai.analyze.ok",
		"req_id", rid,
		"finish_reason", cc.Choices[0].FinishReason,
		"completion_tokens", cc.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &vision.RawResponse{
		Content:      strings.TrimSpace(cc.Choices[0].Message.Content),
		Model:        cc.Model,
		FinishReason: cc.Choices[0].FinishReason,
		PromptTokens: cc.Usage.PromptTokens,
		OutputTokens: cc.Usage.CompletionTokens,
		Latency:      time.Since(start),
	}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			c.logger.Warn("openai response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &vision.ProviderError{Provider: "openai", Status: resp.StatusCode, Body: buf.String()}
	}
	return buf.Bytes(), nil
}

func dataURL(img []byte) string {
	mime := http.DetectContentType(img)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img)
}
