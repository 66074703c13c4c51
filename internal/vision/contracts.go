package vision

import (
	"context"
	"fmt"
	"time"

	"github.com/DandaAkhilReddy/reddy/constants"
)

// Photo is one uploaded body photo, already past quality checks.
type Photo struct {
	Filename string
	Data     []byte
	Angle    constants.Angle
}

// UserContext is what the model gets to know about the subject. Height anchors
// the scale estimate; the rest sharpens body fat and muscle judgments.
type UserContext struct {
	HeightCm float64
	WeightKg float64
	AgeYears int
	Gender   string
	Goal     string
}

// RawResponse is a provider-agnostic model reply. Content is whatever text the
// model produced; downstream extraction recovers the JSON from it.
type RawResponse struct {
	Content      string
	Model        string
	FinishReason string
	PromptTokens int
	OutputTokens int
	Latency      time.Duration
}

// Client is the provider interface the pipeline depends on.
type Client interface {
	AnalyzeBody(ctx context.Context, photos []Photo, user UserContext) (*RawResponse, error)
	Name() string
}

// ProviderError is an HTTP-level rejection from a vision provider. The retry
// layer classifies by status: 429 and 5xx are retryable, other 4xx are not.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.Status, e.Body)
}

// Retryable reports whether another attempt could plausibly succeed.
func (e *ProviderError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}
