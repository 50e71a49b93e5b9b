package cardlingo

import (
	"context"
	"sync"
	"time"
)

// RateLimiter controls the rate of backend requests using a token
// bucket algorithm. Most translation providers rate-limit by caller, so
// a single limiter should front all pipelines sharing one credential.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.TryAcquire() {
			return nil
		}

		r.mu.Lock()
		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		return true
	}

	return false
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedBackend wraps a Backend with rate limiting.
type RateLimitedBackend struct {
	backend Backend
	limiter *RateLimiter
}

// NewRateLimitedBackend creates a new rate-limited backend wrapper.
func NewRateLimitedBackend(backend Backend, cfg RateLimitConfig) *RateLimitedBackend {
	return &RateLimitedBackend{
		backend: backend,
		limiter: NewRateLimiter(cfg),
	}
}

// Translate implements Backend with rate limiting.
func (b *RateLimitedBackend) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", &BackendUnavailableError{
			Message:   "rate limit wait cancelled",
			Cause:     err,
			Retryable: false,
		}
	}

	return b.backend.Translate(ctx, req)
}

// ChunkLimit reports the wrapped backend's chunk ceiling.
func (b *RateLimitedBackend) ChunkLimit() int {
	return b.backend.ChunkLimit()
}

// Limiter returns the underlying rate limiter for inspection.
func (b *RateLimitedBackend) Limiter() *RateLimiter {
	return b.limiter
}
