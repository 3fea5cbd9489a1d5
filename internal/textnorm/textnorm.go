// Package textnorm turns raw OCR output into numbered lines and
// character-budgeted, overlapping chunks for structured extraction.
package textnorm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMaxChars     = 12000
	DefaultOverlapLines = 12
)

var (
	reLineBreak = regexp.MustCompile(`\r\n?|\n`)
	reSpaceRun  = regexp.MustCompile(`\s+`)
)

// Line is a normalized OCR line with its 1-based sequence number.
type Line struct {
	Index int
	Text  string
}

// Label returns the line's traceability label, e.g. "L0007".
func (l Line) Label() string {
	return fmt.Sprintf("L%04d", l.Index)
}

// String renders the line the way chunks present it to the model.
func (l Line) String() string {
	return l.Label() + ": " + l.Text
}

// Chunk is a contiguous slice of numbered lines. Start and End are
// positions in the line slice passed to Split, End exclusive.
type Chunk struct {
	Start int
	End   int
	Lines []Line
}

// Text renders the chunk as newline-separated labelled lines.
func (c Chunk) Text() string {
	parts := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n")
}

// NormalizeLines splits raw text on line breaks, collapses whitespace runs to
// a single space, trims, and drops empty lines.
func NormalizeLines(raw string) []string {
	var out []string
	for _, l := range reLineBreak.Split(raw, -1) {
		l = strings.TrimSpace(reSpaceRun.ReplaceAllString(l, " "))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Number assigns sequence numbers starting at 1.
func Number(lines []string) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{Index: i + 1, Text: l}
	}
	return out
}

// Split groups lines into chunks whose rendered size (one trailing newline per
// line included) stays within maxChars. A chunk always holds at least one
// line. The next chunk starts overlap lines before the previous chunk's end,
// or at its end when that would not move the cursor forward.
func Split(lines []Line, maxChars, overlap int) []Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}

	var chunks []Chunk
	start := 0
	for start < len(lines) {
		end := start
		size := 0
		for end < len(lines) {
			n := utf8.RuneCountInString(lines[end].String()) + 1
			if end > start && size+n > maxChars {
				break
			}
			size += n
			end++
		}
		chunks = append(chunks, Chunk{Start: start, End: end, Lines: lines[start:end]})
		if end >= len(lines) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// LineNumber parses a label such as "L0012" (or "12") back into its index.
// It returns 0 when the label is not recognised.
func LineNumber(label string) int {
	label = strings.TrimSpace(label)
	label = strings.TrimPrefix(strings.TrimPrefix(label, "L"), "l")
	n, err := strconv.Atoi(label)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
