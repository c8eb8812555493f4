package model

import (
	"context"
	"fmt"
	"time"
)

// RetryOptions configure the Retry decorator.
type RetryOptions struct {
	// MaxAttempts bounds the total number of calls (first try included).
	MaxAttempts int
	// BaseDelay seeds the exponential backoff (base * 2^attempt).
	BaseDelay time.Duration
	// MaxDelay caps a single backoff sleep.
	MaxDelay time.Duration
}

// Retry wraps a Generator with bounded retry on retryable failures.
// ErrUnavailable and context cancellation abort immediately; retry policy
// lives here at the collaborator boundary, never in the orchestrator.
type Retry struct {
	inner Generator
	opts  RetryOptions
}

// NewRetry decorates a generator with exponential backoff retry.
func NewRetry(inner Generator, optFns ...func(o *RetryOptions)) *Retry {
	opts := RetryOptions{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Retry{inner: inner, opts: opts}
}

// Generate calls the wrapped generator, sleeping base*2^n (capped at
// MaxDelay) between retryable failures.
func (r *Retry) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.opts.BaseDelay << (attempt - 1)
			if delay > r.opts.MaxDelay {
				delay = r.opts.MaxDelay
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := r.inner.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", r.opts.MaxAttempts, lastErr)
}

// Info returns the wrapped generator's info.
func (r *Retry) Info() Info { return r.inner.Info() }
