// Package model defines the text-generation boundary consumed by agents and
// the orchestrator: a minimal Generator interface, a sentinel error taxonomy
// for classifying provider failures, and a retry decorator implementing
// bounded exponential backoff. Provider adapters live in subpackages
// (model/openai, model/anthropic).
package model

import (
	"context"
	"errors"
)

// Sentinel errors classifying generation failures. Adapters wrap provider
// errors with exactly one of these; callers test with errors.Is.
var (
	// ErrRateLimited marks a throttled call. Retryable with backoff.
	ErrRateLimited = errors.New("generation rate limited")
	// ErrTransient marks a temporary provider failure. Retryable.
	ErrTransient = errors.New("transient generation error")
	// ErrUnavailable marks a non-retryable failure; callers take their
	// fallback path immediately.
	ErrUnavailable = errors.New("generation unavailable")
)

// IsRetryable reports whether the error is worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransient)
}

// Info contains metadata about a generator implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Generator is the minimal interface required to turn a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// Info returns information about the generator implementation.
	Info() Info
}
