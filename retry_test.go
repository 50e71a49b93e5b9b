package cardlingo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestWithRetry_EventualSuccess(t *testing.T) {
	attempts := 0
	result, err := WithRetry(context.Background(), fastRetryConfig(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", &BackendUnavailableError{Message: "flaky", Retryable: true}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q", result)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), fastRetryConfig(), func() (string, error) {
		attempts++
		return "", &BackendUnavailableError{Message: "bad key", Retryable: false}
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestWithRetry_ExhaustsRetries(t *testing.T) {
	attempts := 0
	permanent := &BackendUnavailableError{Message: "still down", Retryable: true}
	_, err := WithRetry(context.Background(), fastRetryConfig(), func() (string, error) {
		attempts++
		return "", permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("got %v, want the last backend error", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4 (initial + 3 retries)", attempts)
	}
}

func TestWithRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	_, err := WithRetry(ctx, fastRetryConfig(), func() (string, error) {
		attempts++
		return "ok", nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if attempts != 0 {
		t.Errorf("attempts = %d, want 0", attempts)
	}
}

func TestRetryableBackend(t *testing.T) {
	attempts := 0
	inner := &testBackend{
		limit: 123,
		fn: func(_ context.Context, req TranslateRequest) (string, error) {
			attempts++
			if attempts == 1 {
				return "", &BackendUnavailableError{Message: "hiccup", Retryable: true}
			}
			return "translated", nil
		},
	}
	b := NewRetryableBackend(inner, fastRetryConfig())

	got, err := b.Translate(context.Background(), TranslateRequest{Text: "x", TargetLang: "pt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "translated" {
		t.Errorf("got %q", got)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if b.ChunkLimit() != 123 {
		t.Errorf("ChunkLimit not passed through: %d", b.ChunkLimit())
	}
}
