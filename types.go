package cardlingo

import "context"

// SpanCategory classifies a protected span extracted by the Vault.
type SpanCategory int

const (
	// CategoryVariable is a {{name}}-style template variable.
	CategoryVariable SpanCategory = iota
	// CategoryBlockCode is a fenced ``` code block.
	CategoryBlockCode
	// CategoryInlineCode is a single-backtick code span.
	CategoryInlineCode
	// CategoryAngle is an <angle-bracket> tag.
	CategoryAngle
)

// String returns a short name for the category.
func (c SpanCategory) String() string {
	switch c {
	case CategoryVariable:
		return "variable"
	case CategoryBlockCode:
		return "block-code"
	case CategoryInlineCode:
		return "inline-code"
	case CategoryAngle:
		return "angle"
	default:
		return "unknown"
	}
}

// ProtectedSpan is a substring shielded from the translation backend.
type ProtectedSpan struct {
	Raw      string       // original text, delimiters included
	Category SpanCategory // what kind of span this is
	Marker   string       // opaque marker substituted in its place
}

// SegmentKind distinguishes plain text from delimited regions.
type SegmentKind int

const (
	// SegmentPlain is free text with no surrounding markdown delimiters.
	SegmentPlain SegmentKind = iota
	// SegmentDelimited is a region bounded by a matched delimiter pair.
	SegmentDelimited
)

// DelimiterPair holds the opening and closing marker text of a delimited
// region. Open and Close differ only for bracket-style pairs.
type DelimiterPair struct {
	Open  string
	Close string
}

// Segment is one ordered piece of a decomposed string. For delimited
// segments Content is the interior text without the delimiters.
type Segment struct {
	Kind    SegmentKind
	Content string
	Delim   DelimiterPair
}

// TranslateRequest carries one chunk of plain text to a Backend.
type TranslateRequest struct {
	Text       string // shielded chunk text
	TargetLang string // target language code (e.g. "pt", "fr")
	SourceLang string // source language code, "auto" if unknown

	// PreserveAngle tells instruction-following backends to echo
	// <angle-bracket> content verbatim. Statistical backends ignore it;
	// for them angle tags are already shielded before the call.
	PreserveAngle bool
}

// Backend is the uniform translation capability. Implementations live in
// the backend package; wrappers in this package add retry and rate
// limiting around it.
type Backend interface {
	// Translate translates one chunk. It must apply its own bounded
	// per-call timeout and report transport or auth failures as
	// *BackendUnavailableError and unusable replies as
	// *EmptyResponseError.
	Translate(ctx context.Context, req TranslateRequest) (string, error)

	// ChunkLimit is the character ceiling for a single request.
	// Zero means no backend-imposed limit; the pipeline still chunks
	// at a default size for latency.
	ChunkLimit() int
}

// TranslationCache memoizes final translated field strings within one
// process run. GetOrCompute must be single-flight per key: a second
// request for an in-flight key waits for the first computation instead
// of issuing a duplicate one.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
	GetOrCompute(key string, compute func() (string, error)) (string, error)
}

// FieldReport describes what happened while translating one field.
type FieldReport struct {
	Text            string // final field text
	Cached          bool   // served entirely from cache
	Chunks          int    // chunks sent to the backend
	FailedChunks    int    // chunks left untranslated after backend failure
	StrippedMarkers int    // markers sanitized out of the final text
}
