package cardlingo

import "fmt"

// BackendUnavailableError indicates a transient backend failure: network
// trouble, auth rejection, rate limiting, or a per-call timeout.
type BackendUnavailableError struct {
	Message   string
	Cause     error
	Retryable bool // whether the call can be retried
}

func (e *BackendUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("backend unavailable: %s", e.Message)
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Cause
}

// EmptyResponseError indicates the backend answered but returned nothing
// usable. The pipeline falls back to the untranslated chunk.
type EmptyResponseError struct {
	Backend string
}

func (e *EmptyResponseError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("empty response from %s backend", e.Backend)
	}
	return "empty response from backend"
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ConfigError indicates a misconfigured pipeline (missing backend,
// unknown language code, absent credentials). Unlike backend trouble it
// propagates as a hard failure.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}
