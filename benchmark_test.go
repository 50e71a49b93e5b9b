package cardlingo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/tavernkit/cardlingo"
	"github.com/tavernkit/cardlingo/backend"
	"github.com/tavernkit/cardlingo/cache"
)

// Benchmarks for performance validation

func BenchmarkHashText(b *testing.B) {
	text := "A tall woman with silver hair and a quick temper"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cardlingo.HashText(text)
	}
}

func BenchmarkFieldKey(b *testing.B) {
	text := "A tall woman with silver hair and a quick temper"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cardlingo.FieldKey(text, "pt", "Jane")
	}
}

func BenchmarkShield(b *testing.B) {
	v := cardlingo.NewVault("Jane", false)
	text := "{{user}} reads `notes.txt` while {{char}} watches <quietly>"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.Shield(text)
	}
}

func BenchmarkSegmentText(b *testing.B) {
	text := `He said "hello" while *waving* (from the (inner)) doorway [stage left]`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cardlingo.SegmentText(text)
	}
}

func BenchmarkChunkText_Large(b *testing.B) {
	sentence := "The tavern was crowded that night, full of travelers and rumors. "
	text := strings.Repeat(sentence, 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cardlingo.ChunkText(text, 4500)
	}
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	c := cache.NewMemory(3600)
	c.Set("test-key", "test-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("test-key")
	}
}

func BenchmarkPipeline_TranslateField(b *testing.B) {
	m := backend.NewMockBackend()
	p, err := cardlingo.NewPipeline("pt", m, cardlingo.WithStandinName(true))
	if err != nil {
		b.Fatal(err)
	}
	text := `{{char}} grins. "Welcome back, {{user}}." *She slides a mug across the bar.*`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.TranslateField(context.Background(), text); err != nil {
			b.Fatal(err)
		}
	}
}
