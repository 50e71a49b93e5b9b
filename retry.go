package cardlingo

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt.
		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * time.Duration(1<<attempt)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

// IsRetryable checks if an error is retryable. Only transient backend
// failures qualify; empty responses and context errors do not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var unavailable *BackendUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Retryable
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return false
}

// RetryableBackend wraps a Backend with retry logic. Backends do not
// retry internally; retrying is the caller's concern and this wrapper
// is that caller.
type RetryableBackend struct {
	backend Backend
	config  RetryConfig
}

// NewRetryableBackend creates a backend wrapper with retry logic.
func NewRetryableBackend(backend Backend, cfg RetryConfig) *RetryableBackend {
	return &RetryableBackend{
		backend: backend,
		config:  cfg,
	}
}

// Translate implements Backend with retry logic.
func (b *RetryableBackend) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	return WithRetry(ctx, b.config, func() (string, error) {
		return b.backend.Translate(ctx, req)
	})
}

// ChunkLimit reports the wrapped backend's chunk ceiling.
func (b *RetryableBackend) ChunkLimit() int {
	return b.backend.ChunkLimit()
}
