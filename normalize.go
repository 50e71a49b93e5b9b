package cardlingo

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CaseKind classifies the letter casing of a span of text.
type CaseKind int

const (
	// CaseMixed is anything that is neither all-upper nor all-lower.
	CaseMixed CaseKind = iota
	// CaseUpper means every letter is upper-case.
	CaseUpper
	// CaseLower means every letter is lower-case.
	CaseLower
)

// CaseProfile captures the casing pattern of an original chunk so the
// same pattern can be reapplied to its translation.
type CaseProfile struct {
	Kind         CaseKind
	LeadingUpper bool // for CaseMixed: first alphabetic rune was upper-case
}

// ProfileOf derives the CaseProfile of a chunk. Text with no letters
// profiles as mixed with no leading capital.
func ProfileOf(text string) CaseProfile {
	hasLetter := false
	allUpper, allLower := true, true
	leadingUpper := false
	first := true
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if first {
			leadingUpper = unicode.IsUpper(r)
			first = false
		}
		hasLetter = true
		if !unicode.IsUpper(r) {
			allUpper = false
		}
		if !unicode.IsLower(r) {
			allLower = false
		}
	}
	if !hasLetter {
		return CaseProfile{Kind: CaseMixed}
	}
	switch {
	case allUpper:
		return CaseProfile{Kind: CaseUpper, LeadingUpper: true}
	case allLower:
		return CaseProfile{Kind: CaseLower}
	default:
		return CaseProfile{Kind: CaseMixed, LeadingUpper: leadingUpper}
	}
}

var (
	spaceBeforePunctRe = regexp.MustCompile(`[ \t]+([.,;:])`)
	afterPunctRe       = regexp.MustCompile("([.,;:!?])([^\\s.,;:!?)\\]}\x1a])")
	sentenceStartRe    = regexp.MustCompile(`([.!?]\s+)(\p{Ll})`)
	tildeBeforeRe      = regexp.MustCompile(`(\S)[ \t]+~`)
	tildeAfterRe       = regexp.MustCompile(`~[ \t]+(\S)`)
	hyphenRe           = regexp.MustCompile(`(\w)[ \t]*-[ \t]+(\w)|(\w)[ \t]+-[ \t]*(\w)`)
)

// Normalize post-processes a translated chunk so that its casing and
// punctuation spacing match the original chunk. It is idempotent:
// Normalize(o, Normalize(o, t)) == Normalize(o, t).
func Normalize(original, translated string) string {
	out := applyProfile(ProfileOf(original), translated)

	// No whitespace immediately before . , ; :
	out = spaceBeforePunctRe.ReplaceAllString(out, "$1")
	// Exactly one space after punctuation followed by a word character.
	out = afterPunctRe.ReplaceAllString(out, "$1 $2")
	// A sentence starts with a capital.
	out = sentenceStartRe.ReplaceAllStringFunc(out, func(m string) string {
		r, size := utf8.DecodeLastRuneInString(m)
		return m[:len(m)-size] + string(unicode.ToUpper(r))
	})
	// Tildes and hyphens reattach to their neighbors.
	out = tildeBeforeRe.ReplaceAllString(out, "$1~")
	out = tildeAfterRe.ReplaceAllString(out, "~$1")
	out = hyphenRe.ReplaceAllString(out, "$1$3-$2$4")
	return out
}

// applyProfile reapplies the original's casing pattern.
func applyProfile(p CaseProfile, text string) string {
	switch p.Kind {
	case CaseUpper:
		return strings.ToUpper(text)
	case CaseLower:
		return strings.ToLower(text)
	}
	if !p.LeadingUpper {
		return text
	}
	// Capitalize the first letter if the translation lost it.
	for i, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsUpper(r) {
			return text
		}
		return text[:i] + string(unicode.ToUpper(r)) + text[i+utf8.RuneLen(r):]
	}
	return text
}
