package cardlingo

import "strings"

// delimiterPairs lists the recognized markdown delimiter pairs in
// matching order. Longer markers come before shorter prefixes of the
// same character so ** is never consumed as two italic markers. Fenced
// and inline code are absent here: the Vault removes them first.
var delimiterPairs = []DelimiterPair{
	{Open: "**", Close: "**"},
	{Open: "*", Close: "*"},
	{Open: "`", Close: "`"},
	{Open: `"`, Close: `"`},
	{Open: "(", Close: ")"},
	{Open: "[", Close: "]"},
}

// SegmentText decomposes a string into an ordered list of plain and
// delimited segments. Delimiter types are processed in a fixed global
// order across the whole string, so a parenthetical containing
// asterisks has its asterisks resolved before the parenthetical
// boundary is finalized. An opening marker with no matching closer is
// treated as plain text. Concatenating every segment's text, delimiters
// included, reproduces the input exactly.
func SegmentText(text string) []Segment {
	return segmentFrom(text, 0)
}

// Reassemble concatenates segments back into the original string.
func Reassemble(segments []Segment) string {
	var out strings.Builder
	for _, seg := range segments {
		if seg.Kind == SegmentDelimited {
			out.WriteString(seg.Delim.Open)
			out.WriteString(seg.Content)
			out.WriteString(seg.Delim.Close)
			continue
		}
		out.WriteString(seg.Content)
	}
	return out.String()
}

// segmentFrom scans text for the delimiter pair at index di, falling
// through to the next pair when none matches. The scan returns new
// segment lists instead of mutating shared state, so each call is
// independently testable.
func segmentFrom(text string, di int) []Segment {
	if text == "" {
		return nil
	}
	if di >= len(delimiterPairs) {
		return []Segment{{Kind: SegmentPlain, Content: text}}
	}
	pair := delimiterPairs[di]

	open := findMarker(text, pair.Open, 0)
	for open >= 0 {
		interior := open + len(pair.Open)
		closing := findMarker(text, pair.Close, interior)
		if closing >= 0 {
			var segs []Segment
			segs = append(segs, segmentFrom(text[:open], di+1)...)
			segs = append(segs, Segment{
				Kind:    SegmentDelimited,
				Content: text[interior:closing],
				Delim:   pair,
			})
			segs = append(segs, segmentFrom(text[closing+len(pair.Close):], di)...)
			return segs
		}
		// No closer: this opener is plain text. Keep scanning after it.
		open = findMarker(text, pair.Open, interior)
	}
	return segmentFrom(text, di+1)
}

// findMarker locates the next occurrence of marker at or after from
// that is exactly the marker text, not part of a longer run of the same
// character (a lone * inside ** does not count as an italic marker).
// The run check applies only to characters with multi-length marker
// variants; nested parentheses and brackets are legitimate.
func findMarker(text, marker string, from int) int {
	c := marker[0]
	if c != '*' && c != '`' {
		idx := strings.Index(text[from:], marker)
		if idx < 0 {
			return -1
		}
		return from + idx
	}
	for i := from; ; {
		idx := strings.Index(text[i:], marker)
		if idx < 0 {
			return -1
		}
		pos := i + idx
		end := pos + len(marker)
		if (pos == 0 || text[pos-1] != c) && (end >= len(text) || text[end] != c) {
			return pos
		}
		// Skip past the whole run of this character.
		i = end
		for i < len(text) && text[i] == c {
			i++
		}
		if i >= len(text) {
			return -1
		}
	}
}
