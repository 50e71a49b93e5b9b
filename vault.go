package cardlingo

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stand-in personal names substituted for the user and character
// placeholders before a backend call. Size-limited MT backends silently
// drop or mistranslate brace syntax, so the placeholders travel as
// ordinary names and are restored afterwards by literal replacement.
// A stand-in that also occurs in real prose can be over-restored; that
// limitation is inherited from the source behavior and intentionally not
// papered over.
const (
	UserStandin        = "James"
	DefaultCharStandin = "Jane"
)

// Markers are framed with the SUB control character so they cannot
// collide with natural-language output.
const markerFrame = "\x1a"

var (
	markerRe     = regexp.MustCompile("\x1a[0-9]+\x1a")
	fencedRe     = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`\n]+`")
	angleRe      = regexp.MustCompile(`<[^<>\n]+>`)
	variableRe   = regexp.MustCompile(`\{\{[^{}]+\}\}(?:'s)?`)

	userRe       = regexp.MustCompile(`(?i)\{\{user\}\}`)
	userPossRe   = regexp.MustCompile(`(?i)\{\{user\}\}'s`)
	charRe       = regexp.MustCompile(`(?i)\{\{(?:char|assistant)\}\}`)
	charPossRe   = regexp.MustCompile(`(?i)\{\{(?:char|assistant)\}\}'s`)
	anyVarRe     = regexp.MustCompile(`\{\{([^{}]+)\}\}('s)?`)
	braceRunOpen = regexp.MustCompile(`\{{3,}`)
	braceRunClos = regexp.MustCompile(`\}{3,}`)
	braceLoose   = regexp.MustCompile(`\{+\s*(\w+)\s*\}+`)
	assistantRe  = regexp.MustCompile(`(?i)\{\{?\s*assistant\s*\}?\}`)
	// Spacing repair pads any non-punctuation neighbor of a placeholder,
	// including markdown markers: **{{char}}** comes out ** {{char}} **.
	afterBraceRe = regexp.MustCompile(`(\}\})([^\s.,;:!?)\]}])`)
	beforeBrace  = regexp.MustCompile(`([^\s([{])(\{\{)`)
)

// Vault extracts protected spans from a string, replacing each with a
// unique opaque marker, and later substitutes the originals back.
// Marker numbering is local to one Shield call; a Vault is cheap and
// must not be shared across concurrent pipeline runs.
type Vault struct {
	charStandin    string // substituted for {{char}}; empty shields it as a marker
	translateAngle bool   // leave <tags> exposed to the backend
}

// NewVault creates a Vault. charStandin is the name substituted for the
// character placeholder ("" to keep it opaque); translateAngle leaves
// angle-bracket tags unshielded.
func NewVault(charStandin string, translateAngle bool) *Vault {
	return &Vault{charStandin: charStandin, translateAngle: translateAngle}
}

// SpanSet holds the protected spans of one Shield call, in extraction
// order.
type SpanSet struct {
	spans       []ProtectedSpan
	charStandin string
	userSubbed  bool
	charSubbed  bool
}

// Len returns the number of shielded spans.
func (s *SpanSet) Len() int { return len(s.spans) }

// Spans returns the shielded spans in extraction order.
func (s *SpanSet) Spans() []ProtectedSpan { return s.spans }

func (s *SpanSet) next() string {
	return markerFrame + strconv.Itoa(len(s.spans)) + markerFrame
}

// mask replaces every match of re with a fresh marker, recording the
// original text. Matches that already lie inside a marker are skipped.
func (s *SpanSet) mask(text string, re *regexp.Regexp, cat SpanCategory) string {
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var out strings.Builder
	pos := 0
	for _, span := range matches {
		start, end := span[0], span[1]
		if start < pos {
			continue
		}
		raw := text[start:end]
		out.WriteString(text[pos:start])
		marker := s.next()
		s.spans = append(s.spans, ProtectedSpan{Raw: raw, Category: cat, Marker: marker})
		out.WriteString(marker)
		pos = end
	}
	out.WriteString(text[pos:])
	return out.String()
}

// Shield replaces protected spans with opaque markers and the user and
// character placeholders with stand-in names. Precedence: template
// variables, fenced code blocks, inline code, then angle tags, so a
// fenced block's internal backticks are never mistaken for inline
// spans. Spans with no closing delimiter are left as literal text.
func (v *Vault) Shield(text string) (string, *SpanSet) {
	set := &SpanSet{charStandin: v.charStandin}
	if text == "" {
		return text, set
	}

	// Possessive forms first so the trailing 's travels with the name.
	if userPossRe.MatchString(text) {
		text = userPossRe.ReplaceAllString(text, UserStandin+"'s")
		set.userSubbed = true
	}
	if userRe.MatchString(text) {
		text = userRe.ReplaceAllString(text, UserStandin)
		set.userSubbed = true
	}
	if v.charStandin != "" {
		if charPossRe.MatchString(text) {
			text = charPossRe.ReplaceAllString(text, v.charStandin+"'s")
			set.charSubbed = true
		}
		if charRe.MatchString(text) {
			text = charRe.ReplaceAllString(text, v.charStandin)
			set.charSubbed = true
		}
	}

	text = set.mask(text, variableRe, CategoryVariable)
	text = set.mask(text, fencedRe, CategoryBlockCode)
	text = set.mask(text, inlineCodeRe, CategoryInlineCode)
	if !v.translateAngle {
		text = set.mask(text, angleRe, CategoryAngle)
	}
	return text, set
}

// Unshield restores markers to their original spans and stand-in names
// back to canonical placeholders, including the simple case variants a
// backend may produce. Any marker that survives restoration is left for
// StripMarkers; Unshield itself never fails.
func (v *Vault) Unshield(text string, set *SpanSet) string {
	// Reverse extraction order so spans nested inside later spans
	// reappear before their own markers are resolved.
	for i := len(set.spans) - 1; i >= 0; i-- {
		text = strings.ReplaceAll(text, set.spans[i].Marker, set.spans[i].Raw)
	}
	if set.charSubbed && set.charStandin != "" {
		text = restoreStandin(text, set.charStandin, "{{char}}")
	}
	if set.userSubbed {
		text = restoreStandin(text, UserStandin, "{{user}}")
	}
	return text
}

// restoreStandin replaces a stand-in name with its placeholder across
// the exact, lower, upper, and capitalized case variants, possessive
// form first.
func restoreStandin(text, standin, placeholder string) string {
	for _, variant := range caseVariants(standin + "'s") {
		text = strings.ReplaceAll(text, variant, placeholder+"'s")
	}
	for _, variant := range caseVariants(standin) {
		text = strings.ReplaceAll(text, variant, placeholder)
	}
	return text
}

func caseVariants(s string) []string {
	variants := []string{s, strings.ToLower(s), strings.ToUpper(s), capitalize(s)}
	out := variants[:0]
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// StripMarkers removes any marker that leaked into the final output and
// reports how many were removed. A non-zero count is a pipeline defect;
// stripping keeps the document usable either way.
func StripMarkers(text string) (string, int) {
	count := 0
	text = markerRe.ReplaceAllStringFunc(text, func(string) string {
		count++
		return ""
	})
	return text, count
}

// RepairPlaceholders normalizes placeholder syntax after translation:
// localized placeholder words are mapped back to canonical names,
// malformed brace runs are collapsed, {{assistant}} becomes {{char}},
// and spacing around braces is restored.
func RepairPlaceholders(text, targetLang string) string {
	if text == "" {
		return text
	}
	aliases := placeholderAliases[NormalizeLang(targetLang)]
	if aliases == nil {
		aliases = placeholderAliases[baseLang(targetLang)]
	}
	if aliases != nil {
		text = anyVarRe.ReplaceAllStringFunc(text, func(m string) string {
			sub := anyVarRe.FindStringSubmatch(m)
			name := strings.ToLower(strings.TrimSpace(sub[1]))
			canonical, ok := aliases[name]
			if !ok {
				return m
			}
			if poss, found := strings.CutSuffix(canonical, "'s"); found {
				return "{{" + poss + "}}'s" + sub[2]
			}
			return "{{" + canonical + "}}" + sub[2]
		})
	}

	text = braceRunOpen.ReplaceAllString(text, "{{")
	text = braceRunClos.ReplaceAllString(text, "}}")
	text = braceLoose.ReplaceAllString(text, "{{$1}}")
	text = assistantRe.ReplaceAllString(text, "{{char}}")
	text = afterBraceRe.ReplaceAllString(text, "$1 $2")
	text = beforeBrace.ReplaceAllString(text, "$1 $2")
	return text
}
