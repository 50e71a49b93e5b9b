package cardlingo

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkLimit bounds chunk size when the backend reports no limit
// of its own. Instruction backends accept much more, but smaller
// requests keep latency and reply quality predictable.
const DefaultChunkLimit = 4500

// atom is an indivisible unit for chunk sizing: either a single rune or
// a whole vault marker. Markers count by their full length and are
// never split.
type atom struct {
	text  string
	class atomClass
}

type atomClass int

const (
	atomRune atomClass = iota
	atomMarker
	atomSentenceEnd // . ! ?
	atomClauseEnd   // , ; :
	atomSpace
)

// ChunkText subdivides plain text into ordered pieces no longer than
// maxSize bytes. Text that fits is returned whole. Oversized text is
// split just after sentence-ending punctuation; any piece still too
// long is split at clause punctuation, then at whitespace, and only
// then mid-word. Markers are atomic for sizing and never host a split.
// Concatenating the returned chunks in order reproduces the input
// exactly.
func ChunkText(text string, maxSize int) []string {
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = DefaultChunkLimit
	}
	if len(text) <= maxSize {
		return []string{text}
	}

	atoms := atomize(text)
	var chunks []string
	for _, piece := range splitAtoms(atoms, maxSize, atomSentenceEnd) {
		chunks = append(chunks, joinAtoms(piece))
	}
	return chunks
}

// splitAtoms breaks an atom run at every boundary of the given class,
// recursing to the next weaker boundary class for pieces that still
// exceed maxSize. A boundary sits just after the boundary atom and any
// same-class run following it, so ellipses and ",," runs stay together.
func splitAtoms(atoms []atom, maxSize int, class atomClass) [][]atom {
	if atomsLen(atoms) <= maxSize {
		return [][]atom{atoms}
	}
	var pieces [][]atom
	start := 0
	for i := 0; i < len(atoms); i++ {
		if atoms[i].class != class {
			continue
		}
		end := i + 1
		// Keep a run of boundary characters in one piece.
		for end < len(atoms) && atoms[end].class == class {
			end++
		}
		if end < len(atoms) {
			pieces = append(pieces, atoms[start:end])
			start = end
		}
		i = end - 1
	}
	if start < len(atoms) {
		pieces = append(pieces, atoms[start:])
	}

	var out [][]atom
	for _, piece := range pieces {
		if atomsLen(piece) <= maxSize {
			out = append(out, piece)
			continue
		}
		switch class {
		case atomSentenceEnd:
			out = append(out, splitAtoms(piece, maxSize, atomClauseEnd)...)
		case atomClauseEnd:
			out = append(out, splitAtoms(piece, maxSize, atomSpace)...)
		default:
			out = append(out, hardSplit(piece, maxSize)...)
		}
	}
	return out
}

// hardSplit cuts at atom boundaries when no punctuation or whitespace
// is available, so markers still survive intact.
func hardSplit(atoms []atom, maxSize int) [][]atom {
	var out [][]atom
	start, size := 0, 0
	for i, a := range atoms {
		if size+len(a.text) > maxSize && i > start {
			out = append(out, atoms[start:i])
			start, size = i, 0
		}
		size += len(a.text)
	}
	if start < len(atoms) {
		out = append(out, atoms[start:])
	}
	return out
}

func atomsLen(atoms []atom) int {
	n := 0
	for _, a := range atoms {
		n += len(a.text)
	}
	return n
}

func joinAtoms(atoms []atom) string {
	var b strings.Builder
	for _, a := range atoms {
		b.WriteString(a.text)
	}
	return b.String()
}

// atomize splits text into runes and whole markers.
func atomize(text string) []atom {
	var atoms []atom
	for i := 0; i < len(text); {
		if text[i] == markerFrame[0] {
			if loc := markerRe.FindStringIndex(text[i:]); loc != nil && loc[0] == 0 {
				atoms = append(atoms, atom{text: text[i : i+loc[1]], class: atomMarker})
				i += loc[1]
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		atoms = append(atoms, atom{text: text[i : i+size], class: classify(r)})
		i += size
	}
	return atoms
}

func classify(r rune) atomClass {
	switch r {
	case '.', '!', '?':
		return atomSentenceEnd
	case ',', ';', ':':
		return atomClauseEnd
	case ' ', '\t', '\n', '\r':
		return atomSpace
	}
	return atomRune
}
