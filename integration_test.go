package cardlingo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/tavernkit/cardlingo"
	"github.com/tavernkit/cardlingo/backend"
	"github.com/tavernkit/cardlingo/cache"
	"github.com/tavernkit/cardlingo/card"
)

// Integration tests using all real components

func TestIntegration_BasicTranslation(t *testing.T) {
	m := backend.NewMockBackend()
	m.Translations["Hello World"] = "Olá Mundo"

	p, err := cardlingo.NewPipeline("pt", m,
		cardlingo.WithCache(cache.NewMemory(3600)),
		cardlingo.WithStandinName(true),
	)
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.TranslateField(context.Background(), "Hello World")
	if err != nil {
		t.Fatalf("TranslateField failed: %v", err)
	}
	if got != "Olá Mundo" {
		t.Errorf("got %q", got)
	}
}

func TestIntegration_CacheHit(t *testing.T) {
	m := backend.NewMockBackend()
	p, err := cardlingo.NewPipeline("pt", m, cardlingo.WithCache(cache.NewMemory(3600)))
	if err != nil {
		t.Fatal(err)
	}

	first, _ := p.TranslateFieldReport(context.Background(), "Hello")
	if first.Cached {
		t.Error("first call should not be cached")
	}
	second, _ := p.TranslateFieldReport(context.Background(), "Hello")
	if !second.Cached {
		t.Error("second call should be cached")
	}
	if m.CallCount != 1 {
		t.Errorf("backend called %d times, want 1", m.CallCount)
	}
}

func TestIntegration_CardDocument(t *testing.T) {
	m := backend.NewMockBackend()
	m.Translations["A tall woman with silver hair."] = "Uma mulher alta de cabelos prateados."

	data := map[string]any{
		"name": "Aria",
		"data": map[string]any{
			"name":        "Aria",
			"description": "A tall woman with silver hair.",
			"first_mes":   "Hello",
		},
	}

	p, err := cardlingo.NewPipeline("pt", m,
		cardlingo.WithCharacterName(card.CharacterName(data)),
		cardlingo.WithStandinName(true),
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := card.Translate(context.Background(), data, p, false); err != nil {
		t.Fatal(err)
	}

	inner := data["data"].(map[string]any)
	if inner["description"] != "Uma mulher alta de cabelos prateados." {
		t.Errorf("description = %v", inner["description"])
	}
	if inner["name"] != "Aria" {
		t.Errorf("name = %v", inner["name"])
	}
}

func TestIntegration_ProtectedContentRoundtrip(t *testing.T) {
	// The mock echoes unknown chunks in brackets, so anything the vault
	// protects must come back byte-identical anyway.
	m := backend.NewMockBackend()
	p, err := cardlingo.NewPipeline("pt", m, cardlingo.WithStandinName(true))
	if err != nil {
		t.Fatal(err)
	}

	input := "{{user}} opens `inventory.json` carefully"
	got, err := p.TranslateField(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "{{user}}") {
		t.Errorf("user placeholder lost: %q", got)
	}
	if !strings.Contains(got, "`inventory.json`") {
		t.Errorf("code span lost: %q", got)
	}
}

func TestIntegration_RetryWrappedBackend(t *testing.T) {
	m := backend.NewMockBackend()
	m.Translations["Hello"] = "Olá"

	wrapped := cardlingo.NewRetryableBackend(m, cardlingo.DefaultRetryConfig())
	p, err := cardlingo.NewPipeline("pt", wrapped)
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.TranslateField(context.Background(), "Hello")
	if err != nil || got != "Olá" {
		t.Errorf("got %q, %v", got, err)
	}
}
