package validator

import (
	"strings"
	"unicode/utf8"
)

// DefaultExcerptRadius is the number of bytes shown on each side of a
// problem position.
const DefaultExcerptRadius = 20

// Excerpt returns the text around pos, radius bytes on each side, clamped
// to the document and widened so no UTF-8 sequence is split. It returns ""
// for NoPosition or an out-of-range position.
func Excerpt(doc string, pos, radius int) string {
	if pos < 0 || pos > len(doc) {
		return ""
	}
	if radius < 0 {
		radius = 0
	}

	start := max(pos-radius, 0)
	for start > 0 && !utf8.RuneStart(doc[start]) {
		start--
	}

	end := min(pos+radius, len(doc))
	for end < len(doc) && !utf8.RuneStart(doc[end]) {
		end++
	}

	return doc[start:end]
}

// LineColumn converts a byte offset into a 1-based line number and a
// 1-based column counted in runes. Out-of-range offsets are clamped.
func LineColumn(doc string, pos int) (line, col int) {
	if pos < 0 {
		return 0, 0
	}
	if pos > len(doc) {
		pos = len(doc)
	}

	before := doc[:pos]
	line = strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	col = utf8.RuneCountInString(before[lineStart:]) + 1
	return line, col
}
