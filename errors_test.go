package cardlingo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestBackendUnavailableError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &BackendUnavailableError{Message: "google request failed", Cause: cause, Retryable: true}

	if !strings.Contains(err.Error(), "google request failed") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}

	wrapped := fmt.Errorf("field description: %w", err)
	var target *BackendUnavailableError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find the backend error through wrapping")
	}
	if !target.Retryable {
		t.Error("Retryable flag lost through wrapping")
	}
}

func TestEmptyResponseError(t *testing.T) {
	err := &EmptyResponseError{Backend: "mymemory"}
	if !strings.Contains(err.Error(), "mymemory") {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := &EmptyResponseError{}
	if bare.Error() == "" {
		t.Error("empty backend name should still produce a message")
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "target_lang", Message: "unsupported language code xx"}
	if !strings.Contains(err.Error(), "target_lang") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable backend", &BackendUnavailableError{Retryable: true}, true},
		{"permanent backend", &BackendUnavailableError{Retryable: false}, false},
		{"wrapped retryable", fmt.Errorf("x: %w", &BackendUnavailableError{Retryable: true}), true},
		{"empty response", &EmptyResponseError{}, false},
		{"context canceled", context.Canceled, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("%s: IsRetryable = %v, want %v", tt.name, got, tt.want)
		}
	}
}
