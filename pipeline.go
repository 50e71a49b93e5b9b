package cardlingo

import (
	"context"
	"strings"
	"unicode"
)

// Pipeline is the format-preserving translation engine for one target
// language and character. It is a pure function over strings except for
// the backend call; construct one per document when translating
// documents concurrently, sharing at most the cache.
type Pipeline struct {
	targetLang string
	sourceLang string
	backend    Backend
	cache      TranslationCache

	charName          string
	useStandinName    bool
	translateAngle    bool
	translateParens   bool
	translateBrackets bool
	chunkLimit        int
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithSourceLang sets the source language ("auto" by default).
func WithSourceLang(lang string) Option {
	return func(p *Pipeline) {
		p.sourceLang = lang
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) Option {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

// WithCharacterName sets the character's display name, substituted for
// the {{char}} placeholder during backend calls.
func WithCharacterName(name string) Option {
	return func(p *Pipeline) {
		p.charName = name
	}
}

// WithStandinName substitutes a fixed stand-in name for {{char}}
// instead of the character's real display name.
func WithStandinName(enabled bool) Option {
	return func(p *Pipeline) {
		p.useStandinName = enabled
	}
}

// WithAngleTranslation exposes <angle-bracket> tag content to the
// backend instead of shielding it.
func WithAngleTranslation(enabled bool) Option {
	return func(p *Pipeline) {
		p.translateAngle = enabled
	}
}

// WithParenthesesTranslation translates parenthetical content; when
// disabled, (…) interiors are copied verbatim.
func WithParenthesesTranslation(enabled bool) Option {
	return func(p *Pipeline) {
		p.translateParens = enabled
	}
}

// WithBracketTranslation translates [bracketed] content; when disabled,
// […] interiors are copied verbatim.
func WithBracketTranslation(enabled bool) Option {
	return func(p *Pipeline) {
		p.translateBrackets = enabled
	}
}

// WithChunkLimit overrides the backend's chunk size ceiling.
func WithChunkLimit(n int) Option {
	return func(p *Pipeline) {
		p.chunkLimit = n
	}
}

// NewPipeline creates a Pipeline targeting the given language. The
// backend is an explicit dependency, never ambient state. Configuration
// problems are reported here as hard failures; translation trouble
// later never is.
func NewPipeline(targetLang string, backend Backend, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		targetLang:        NormalizeLang(targetLang),
		sourceLang:        "auto",
		backend:           backend,
		translateParens:   true,
		translateBrackets: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.backend == nil {
		return nil, &ConfigError{Field: "backend", Message: "no translation backend configured"}
	}
	if p.targetLang == "" {
		return nil, &ConfigError{Field: "target_lang", Message: "target language is required"}
	}
	if !IsSupported(p.targetLang) {
		return nil, &ConfigError{Field: "target_lang", Message: "unsupported language code " + p.targetLang}
	}
	return p, nil
}

// TargetLang returns the target language code.
func (p *Pipeline) TargetLang() string { return p.targetLang }

// SourceLang returns the source language code.
func (p *Pipeline) SourceLang() string { return p.sourceLang }

// charStandin returns the name substituted for {{char}}, or "" when the
// placeholder stays opaque.
func (p *Pipeline) charStandin() string {
	if p.useStandinName {
		return DefaultCharStandin
	}
	return p.charName
}

// isSourceLang reports whether translation would be a no-op.
func (p *Pipeline) isSourceLang() bool {
	return p.sourceLang != "auto" && baseLang(p.sourceLang) == baseLang(p.targetLang)
}

// TranslateField translates one free-text field. It always returns some
// string: chunks whose backend call fails keep their original text, so
// a partially translated field is still a usable field. The returned
// error is non-nil only for an already-cancelled context.
func (p *Pipeline) TranslateField(ctx context.Context, text string) (string, error) {
	report, err := p.TranslateFieldReport(ctx, text)
	return report.Text, err
}

// TranslateFieldReport is TranslateField plus per-field accounting.
func (p *Pipeline) TranslateFieldReport(ctx context.Context, text string) (FieldReport, error) {
	report := FieldReport{Text: text}
	if strings.TrimSpace(text) == "" || p.isSourceLang() {
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if p.cache == nil {
		report.Text = p.translateShielded(ctx, text, &report)
		return report, nil
	}

	key := FieldKey(text, p.targetLang, p.charStandin())
	if cached, ok := p.cache.Get(key); ok {
		report.Text = cached
		report.Cached = true
		return report, nil
	}
	computed := false
	result, err := p.cache.GetOrCompute(key, func() (string, error) {
		computed = true
		return p.translateShielded(ctx, text, &report), nil
	})
	if err != nil {
		// Cache trouble degrades to an uncached translation.
		report.Text = p.translateShielded(ctx, text, &report)
		return report, nil
	}
	report.Text = result
	// The compute callback not running means another caller's in-flight
	// computation (or a racing Set) supplied the value.
	report.Cached = !computed
	return report, nil
}

// translateShielded runs the shield/segment/chunk/normalize/unshield
// sequence for one field.
func (p *Pipeline) translateShielded(ctx context.Context, text string, report *FieldReport) string {
	vault := NewVault(p.charStandin(), p.translateAngle)
	shielded, spans := vault.Shield(text)

	translated := p.translateSpan(ctx, shielded, report)

	out := vault.Unshield(translated, spans)
	out = RepairPlaceholders(out, p.targetLang)
	out, stripped := StripMarkers(out)
	report.StrippedMarkers += stripped
	return out
}

// translateSpan decomposes a shielded span along delimiter pairs,
// recursing into delimited interiors, and translates the plain pieces
// chunk by chunk.
func (p *Pipeline) translateSpan(ctx context.Context, text string, report *FieldReport) string {
	var out strings.Builder
	for _, seg := range SegmentText(text) {
		if seg.Kind == SegmentDelimited {
			out.WriteString(seg.Delim.Open)
			if p.delimTranslated(seg.Delim) {
				out.WriteString(p.translateSpan(ctx, seg.Content, report))
			} else {
				out.WriteString(seg.Content)
			}
			out.WriteString(seg.Delim.Close)
			continue
		}
		for _, chunk := range ChunkText(seg.Content, p.effectiveChunkLimit()) {
			out.WriteString(p.translateChunk(ctx, chunk, report))
		}
	}
	return out.String()
}

// translateChunk sends one chunk to the backend. A failing or empty
// reply falls back to the chunk's own original text so one bad chunk
// does not abort the whole field.
func (p *Pipeline) translateChunk(ctx context.Context, chunk string, report *FieldReport) string {
	if !hasTranslatableText(chunk) {
		return chunk
	}
	report.Chunks++
	translated, err := p.backend.Translate(ctx, TranslateRequest{
		Text:          chunk,
		TargetLang:    p.targetLang,
		SourceLang:    p.sourceLang,
		PreserveAngle: !p.translateAngle,
	})
	if err != nil || translated == "" {
		report.FailedChunks++
		return chunk
	}
	// Backends routinely trim replies, so restore the chunk's own edge
	// whitespace before the chunks are concatenated back together.
	lead := chunk[:len(chunk)-len(strings.TrimLeft(chunk, " \t\n"))]
	trail := chunk[len(strings.TrimRight(chunk, " \t\n")):]
	translated = lead + strings.TrimSpace(translated) + trail
	// Stand-in names are mixed-case by construction and must not skew
	// the original chunk's case profile.
	return Normalize(p.stripStandins(chunk), translated)
}

// stripStandins removes stand-in personal names before case profiling.
func (p *Pipeline) stripStandins(chunk string) string {
	chunk = strings.ReplaceAll(chunk, UserStandin+"'s", "")
	chunk = strings.ReplaceAll(chunk, UserStandin, "")
	if standin := p.charStandin(); standin != "" {
		chunk = strings.ReplaceAll(chunk, standin+"'s", "")
		chunk = strings.ReplaceAll(chunk, standin, "")
	}
	return chunk
}

// delimTranslated reports whether a delimited interior is translated or
// copied verbatim.
func (p *Pipeline) delimTranslated(d DelimiterPair) bool {
	switch d.Open {
	case "(":
		return p.translateParens
	case "[":
		return p.translateBrackets
	}
	return true
}

func (p *Pipeline) effectiveChunkLimit() int {
	if p.chunkLimit > 0 {
		return p.chunkLimit
	}
	return p.backend.ChunkLimit()
}

// hasTranslatableText reports whether a chunk contains any letters once
// markers are removed. Marker-only and punctuation-only chunks skip the
// backend entirely.
func hasTranslatableText(chunk string) bool {
	rest := markerRe.ReplaceAllString(chunk, "")
	return strings.ContainsFunc(rest, unicode.IsLetter)
}
