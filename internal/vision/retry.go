package vision

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DandaAkhilReddy/reddy/internal/common"
)

// maxRetryDelay caps the exponential backoff so a generous attempt budget
// cannot stretch waits without bound.
const maxRetryDelay = 30 * time.Second

// Caller wraps a provider Client with per-attempt timeouts and exponential
// backoff. The delay doubles each attempt, capped at maxRetryDelay: with the
// defaults the waits are 1s, 2s, 4s.
type Caller struct {
	client Client
	cfg    common.VisionConfig
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewCaller(client Client, cfg common.VisionConfig, logger *slog.Logger) *Caller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	return &Caller{
		client: client,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// Call runs the vision request with retries. Permanent provider rejections
// fail immediately; timeouts, rate limits and 5xx responses retry until the
// attempt budget runs out, which yields an EXHAUSTED error wrapping the last
// cause.
func (c *Caller) Call(ctx context.Context, photos []Photo, user UserContext) (*RawResponse, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("vision.call.start",
		"req_id", rid,
		"provider", c.client.Name(),
		"model", c.cfg.Model,
		"photos", len(photos),
		"attempts_max", c.cfg.RetryAttempts,
	)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.RetryAttempts; attempt++ {
		resp, err := c.once(ctx, photos, user)
		if err == nil {
			c.logger.Info("vision.call.ok",
				"req_id", rid,
				"attempt", attempt,
				"finish_reason", resp.FinishReason,
				"output_tokens", resp.OutputTokens,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return resp, nil
		}
		lastErr = err

		kind, retryable := classify(err)
		c.logger.Warn("vision.call.attempt_failed",
			"req_id", rid,
			"attempt", attempt,
			"kind", string(kind),
			"retryable", retryable,
			"error", err,
		)
		if !retryable {
			return nil, common.NewVisionAPIError(kind, attempt, err)
		}
		if attempt == c.cfg.RetryAttempts {
			break
		}
		// the parent ctx cancelling mid-backoff aborts the whole call
		if sleepErr := c.sleep(ctx, backoff(c.cfg.RetryDelay, attempt)); sleepErr != nil {
			return nil, common.NewVisionAPIError(common.VisionTimeout, attempt, sleepErr)
		}
	}

	c.logger.Error("vision.call.exhausted",
		"req_id", rid,
		"attempts", c.cfg.RetryAttempts,
		"error", lastErr,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil, common.NewVisionAPIError(common.VisionExhausted, c.cfg.RetryAttempts, lastErr)
}

// backoff doubles base per completed attempt. Doubling in a loop instead of
// shifting keeps an oversized attempt count from overflowing the duration.
func backoff(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return d
}

func (c *Caller) once(ctx context.Context, photos []Photo, user UserContext) (*RawResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	return c.client.AnalyzeBody(attemptCtx, photos, user)
}

func classify(err error) (common.VisionAPIKind, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.VisionTimeout, true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Status == 429 {
			return common.VisionRateLimited, true
		}
		if pe.Retryable() {
			return common.VisionProviderRejected, true
		}
		return common.VisionProviderRejected, false
	}
	// transport-level failures are worth another attempt
	return common.VisionProviderRejected, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
