package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tavernkit/cardlingo"
)

const (
	myMemoryBaseURL    = "https://api.mymemory.translated.net/get"
	myMemoryChunkLimit = 500
)

// MyMemoryBackend implements Backend against the MyMemory public API.
// The free tier caps requests at 500 bytes of text, hence the small
// chunk limit.
type MyMemoryBackend struct {
	httpClient *http.Client
	baseURL    string
	email      string
}

// MyMemoryConfig holds configuration for the MyMemory backend.
type MyMemoryConfig struct {
	HTTPClient *http.Client  // Custom HTTP client (optional)
	BaseURL    string        // Override endpoint, mainly for tests (optional)
	Email      string        // Contact email, raises the daily quota (optional)
	Timeout    time.Duration // Request timeout (default: 30s)
}

// NewMyMemoryBackend creates a new MyMemory backend.
func NewMyMemoryBackend(cfg MyMemoryConfig) *MyMemoryBackend {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = myMemoryBaseURL
	}

	return &MyMemoryBackend{
		httpClient: client,
		baseURL:    baseURL,
		email:      cfg.Email,
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
}

// Translate translates a single chunk of text.
func (b *MyMemoryBackend) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	sourceLang := req.SourceLang
	if sourceLang == "" || sourceLang == "auto" {
		// MyMemory has no autodetect; English source is the common case
		// for character cards.
		sourceLang = "en"
	}

	params := url.Values{}
	params.Set("q", req.Text)
	params.Set("langpair", sourceLang+"|"+req.TargetLang)
	if b.email != "" {
		params.Set("de", b.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", &cardlingo.BackendUnavailableError{
			Message: "building MyMemory request",
			Cause:   err,
		}
	}
	httpReq.Header.Set("User-Agent", cardlingo.UserAgent())

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", &cardlingo.BackendUnavailableError{
			Message:   "MyMemory request failed",
			Cause:     err,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &cardlingo.BackendUnavailableError{
			Message:   fmt.Sprintf("MyMemory returned status %d", resp.StatusCode),
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	var body myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &cardlingo.BackendUnavailableError{
			Message: "decoding MyMemory response",
			Cause:   err,
		}
	}

	// responseStatus is a number on success but a quoted string on some
	// error paths, so it is matched loosely.
	status := strings.Trim(string(body.ResponseStatus), `"`)
	if status != "" && status != "200" {
		return "", &cardlingo.BackendUnavailableError{
			Message:   fmt.Sprintf("MyMemory error %s: %s", status, body.ResponseDetails),
			Retryable: status == "429" || status == "503",
		}
	}

	if strings.TrimSpace(body.ResponseData.TranslatedText) == "" {
		return "", &cardlingo.EmptyResponseError{Backend: "mymemory"}
	}

	return body.ResponseData.TranslatedText, nil
}

// ChunkLimit returns the maximum chunk size the free tier accepts.
func (b *MyMemoryBackend) ChunkLimit() int { return myMemoryChunkLimit }

// Verify MyMemoryBackend implements Backend
var _ Backend = (*MyMemoryBackend)(nil)
