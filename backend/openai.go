package backend

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/tavernkit/cardlingo"
)

// OpenAIBackend implements Backend using an OpenAI-compatible chat API.
// It follows instructions well enough to leave protected tokens alone,
// but replies still get scrubbed for code fences and reasoning tags.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// OpenAIConfig holds configuration for the OpenAI backend.
type OpenAIConfig struct {
	APIKey      string        // API key (uses OPENAI_API_KEY env var if empty)
	Model       string        // Model to use (default: "gpt-4o-mini")
	Temperature float32       // Temperature for generation (default: 0.2)
	BaseURL     string        // Custom base URL for compatible servers (optional)
	Timeout     time.Duration // Per-request timeout (default: 120s)
}

// NewOpenAIBackend creates a new OpenAI backend.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &OpenAIBackend{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		timeout:     timeout,
	}
}

// Translate translates a single chunk of text.
func (b *OpenAIBackend) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: b.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: b.temperature,
	})
	if err != nil {
		return "", &cardlingo.BackendUnavailableError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &cardlingo.EmptyResponseError{Backend: "openai"}
	}

	reply := cleanReply(resp.Choices[0].Message.Content)
	if strings.TrimSpace(reply) == "" {
		return "", &cardlingo.EmptyResponseError{Backend: "openai"}
	}

	return reply, nil
}

// ChunkLimit reports no intrinsic size limit; the pipeline default applies.
func (b *OpenAIBackend) ChunkLimit() int { return 0 }

func (b *OpenAIBackend) buildSystemPrompt(req TranslateRequest) string {
	targetName := cardlingo.GetLanguageName(req.TargetLang)

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a professional translator for roleplay character descriptions.
Translate the user's message into %s.

Rules:
- Output ONLY the translation, with no commentary, notes, or explanations.
- Keep control tokens of the form %s<number>%s exactly as they appear. Do not translate, reorder, or remove them.
- Keep template variables such as {{user}} and {{char}} exactly as written.
- Preserve the original line breaks and leading/trailing whitespace.
- Do not wrap the output in quotes or Markdown code blocks.
- Preserve the tone and register of the source text.`,
		targetName, "\x1a", "\x1a")

	if req.SourceLang != "" && req.SourceLang != "auto" {
		fmt.Fprintf(&sb, "\nThe source language is %s.", cardlingo.GetLanguageName(req.SourceLang))
	}

	if req.PreserveAngle {
		sb.WriteString("\n- Keep text inside angle brackets (<like this>) exactly as written.")
	}

	return sb.String()
}

var (
	fenceWrapRe = regexp.MustCompile("(?s)\\A\\s*```[a-zA-Z]*\\n?(.*?)\\n?```\\s*\\z")
	thinkTagRe  = regexp.MustCompile(`(?s)<(think|thinking|reasoning|reflection)>.*?</(think|thinking|reasoning|reflection)>`)
)

// cleanReply strips the decorations instruction models like to add:
// a wrapping code fence and any chain-of-thought tags.
func cleanReply(reply string) string {
	if m := fenceWrapRe.FindStringSubmatch(reply); m != nil {
		reply = m[1]
	}
	reply = thinkTagRe.ReplaceAllString(reply, "")
	return strings.TrimSpace(reply)
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIBackend implements Backend
var _ Backend = (*OpenAIBackend)(nil)
