// Package chunk splits document text into bounded retrieval units.
package chunk

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the default chunk size bound in characters.
const DefaultMaxChars = 850

// blockSeparator matches a blank line, including lines holding only whitespace.
var blockSeparator = regexp.MustCompile(`\n\s*\n`)

const blockJoin = "\n\n"

// Split breaks text into chunks of at most maxChars characters.
//
// Blocks separated by blank lines are packed greedily. A single block longer
// than maxChars is emitted as its own chunk without further splitting, so that
// chunk may exceed the bound. Each chunk has its whitespace collapsed to single
// spaces. A maxChars of zero or less uses DefaultMaxChars.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var chunks []string
	var buf strings.Builder
	bufLen := 0

	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
		}
	}

	for _, block := range Blocks(text) {
		blockLen := utf8.RuneCountInString(block)

		if bufLen > 0 {
			if joined := bufLen + len(blockJoin) + blockLen; joined <= maxChars {
				buf.WriteString(blockJoin)
				buf.WriteString(block)
				bufLen = joined
				continue
			}
		}

		flush()
		buf.WriteString(block)
		bufLen = blockLen
	}
	flush()

	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if n := NormalizeWhitespace(c); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Blocks returns the trimmed, non-empty blank-line separated blocks of text.
func Blocks(text string) []string {
	raw := blockSeparator.Split(strings.TrimSpace(text), -1)
	blocks := make([]string, 0, len(raw))
	for _, b := range raw {
		if b = strings.TrimSpace(b); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// NormalizeWhitespace collapses runs of whitespace to single spaces and trims the edges.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
