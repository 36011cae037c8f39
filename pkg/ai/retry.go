package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// GenerationError reports that the generation backend failed after the
// configured number of attempts.
type GenerationError struct {
	Attempts int
	LastErr  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation request failed after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *GenerationError) Unwrap() error {
	return e.LastErr
}

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = time.Second
)

// RetryingClient wraps a GenerationClient with bounded retry and exponential
// backoff for completions. Delays between failed attempts double starting at
// BaseDelay (1, 2, 4, 8 units for the default 5 attempts); once the final
// attempt fails the call returns a *GenerationError instead of retrying
// further. Embedding calls pass through without retry, the indexer handles
// those with its own policy.
type RetryingClient struct {
	backend     GenerationClient
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(context.Context, time.Duration) error
}

// RetryingClientParams configures a RetryingClient. Zero values fall back to
// 5 attempts and a one second base delay.
type RetryingClientParams struct {
	Backend     GenerationClient
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep overrides the inter-attempt wait, used by tests to avoid real
	// delays. When nil a context-aware timer sleep is used.
	Sleep func(context.Context, time.Duration) error
}

// NewRetryingClient creates a RetryingClient around the given backend.
func NewRetryingClient(params RetryingClientParams) *RetryingClient {
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := params.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	sleep := params.Sleep
	if sleep == nil {
		sleep = sleepWithContext
	}
	return &RetryingClient{
		backend:     params.Backend,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleep,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GenerateCompletion issues the completion request, retrying transient
// failures with exponential backoff. Context cancellation aborts the retry
// sequence immediately and is reported as the context error, not a
// GenerationError.
func (c *RetryingClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...GenerateOption,
) (string, error) {
	var lastErr error
	delay := c.baseDelay

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		result, err := c.backend.GenerateCompletion(ctx, prompt, opts...)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		lastErr = err

		if attempt < c.maxAttempts {
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
			delay *= 2
		}
	}

	return "", &GenerationError{Attempts: c.maxAttempts, LastErr: lastErr}
}

// GenerateEmbedding delegates directly to the wrapped backend.
func (c *RetryingClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return c.backend.GenerateEmbedding(ctx, input)
}
