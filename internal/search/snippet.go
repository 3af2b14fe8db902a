package search

import (
	"regexp"
	"strings"

	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/tokenize"
)

// sentenceRe matches a run of text up to and including a sentence terminator,
// or a trailing run without one.
var sentenceRe = regexp.MustCompile(`[^.!?。！？]+[.!?。！？]*`)

// Sentences splits text into trimmed, non-empty sentences.
func Sentences(text string) []string {
	raw := sentenceRe.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// BestSentence returns the index of the sentence sharing the most distinct
// tokens with query, or 0 when nothing overlaps. It returns -1 for empty input.
func BestSentence(sentences []string, query string, tag lang.Tag) int {
	if len(sentences) == 0 {
		return -1
	}
	q := tokenize.TermFrequency(tokenize.Tokenize(query, tag))
	if len(q) == 0 {
		return 0
	}

	best, bestScore := 0, 0
	for i, s := range sentences {
		score := 0
		for t := range tokenize.TermFrequency(tokenize.Tokenize(s, tag)) {
			if _, ok := q[t]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// Snippet returns the best-matching sentence of r for query, shortened to at
// most maxRunes runes (0 means no limit).
func Snippet(r Result, query string, maxRunes int) string {
	sentences := Sentences(r.Text)
	i := BestSentence(sentences, query, r.Lang)
	if i < 0 {
		return ""
	}
	s := sentences[i]
	if maxRunes > 0 {
		if runes := []rune(s); len(runes) > maxRunes {
			s = strings.TrimSpace(string(runes[:maxRunes])) + "…"
		}
	}
	return s
}
