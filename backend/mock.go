package backend

import (
	"context"
	"fmt"
)

// MockBackend is a mock translation backend for testing.
type MockBackend struct {
	Translations map[string]string  // Map of source text to translation
	Err          error              // Error to return from Translate
	CallCount    int                // Number of times Translate was called
	Requests     []TranslateRequest // All requests received, in order
	Limit        int                // Value returned by ChunkLimit
}

// NewMockBackend creates a new mock backend with default translations.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Translations: map[string]string{
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello World": "Hola Mundo",
		},
	}
}

// Translate returns mock translations.
func (m *MockBackend) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.CallCount++
	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return "", m.Err
	}

	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}

	// Return bracketed text for unknown translations
	return fmt.Sprintf("[%s]", req.Text), nil
}

// ChunkLimit returns the configured limit.
func (m *MockBackend) ChunkLimit() int { return m.Limit }

// Reset resets the call count and recorded requests.
func (m *MockBackend) Reset() {
	m.CallCount = 0
	m.Requests = nil
}

// Verify MockBackend implements Backend
var _ Backend = (*MockBackend)(nil)
