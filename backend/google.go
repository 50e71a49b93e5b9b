package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tavernkit/cardlingo"
)

const (
	googleBaseURL    = "https://translate.google.com/m"
	googleChunkLimit = 4500
)

// GoogleBackend implements Backend against the Google Translate mobile
// endpoint. It is a statistical engine: cheap, fast, and oblivious to
// instructions, so the pipeline must do all shielding itself.
type GoogleBackend struct {
	httpClient *http.Client
	baseURL    string
}

// GoogleConfig holds configuration for the Google backend.
type GoogleConfig struct {
	HTTPClient *http.Client  // Custom HTTP client (optional)
	BaseURL    string        // Override endpoint, mainly for tests (optional)
	Timeout    time.Duration // Request timeout (default: 30s)
}

// NewGoogleBackend creates a new Google backend.
func NewGoogleBackend(cfg GoogleConfig) *GoogleBackend {
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
		baseURL = googleBaseURL
	}

	return &GoogleBackend{
		httpClient: client,
		baseURL:    baseURL,
	}
}

// Translate translates a single chunk of text.
func (b *GoogleBackend) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = "auto"
	}

	params := url.Values{}
	params.Set("sl", sourceLang)
	params.Set("tl", req.TargetLang)
	params.Set("q", req.Text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", &cardlingo.BackendUnavailableError{
			Message: "building Google Translate request",
			Cause:   err,
		}
	}
	httpReq.Header.Set("User-Agent", cardlingo.UserAgent())

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", &cardlingo.BackendUnavailableError{
			Message:   "Google Translate request failed",
			Cause:     err,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &cardlingo.BackendUnavailableError{
			Message:   fmt.Sprintf("Google Translate returned status %d", resp.StatusCode),
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", &cardlingo.BackendUnavailableError{
			Message: "parsing Google Translate response",
			Cause:   err,
		}
	}

	result := doc.Find("div.result-container").First().Text()
	if strings.TrimSpace(result) == "" {
		return "", &cardlingo.EmptyResponseError{Backend: "google"}
	}

	return result, nil
}

// ChunkLimit returns the maximum chunk size the endpoint accepts.
func (b *GoogleBackend) ChunkLimit() int { return googleChunkLimit }

// Verify GoogleBackend implements Backend
var _ Backend = (*GoogleBackend)(nil)
