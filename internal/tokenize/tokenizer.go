// Package tokenize turns text into retrieval tokens.
//
// Tokenization is a pure function of (text, language). A [Strategy] is picked
// once per call: the ideographic path emits character bigrams for Chinese and
// Japanese, the Latin path emits lowercased words with stop words removed and a
// light plural normalization applied.
package tokenize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/Aman-CERP/kbsearch/internal/lang"
)

// Kind identifies a tokenization path.
type Kind int

const (
	// KindLatin splits on word characters and applies stop words and stemming.
	KindLatin Kind = iota
	// KindIdeographic emits kana/ideograph bigrams plus sampled unigrams.
	KindIdeographic
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLatin:
		return "latin"
	case KindIdeographic:
		return "ideographic"
	default:
		return "unknown"
	}
}

// Strategy is the selected tokenization path. Lang is only meaningful for
// KindLatin, where it picks the stop word table.
type Strategy struct {
	Kind Kind
	Lang lang.Tag
}

// unigramStride is the sampling stride for standalone ideographic unigrams.
const unigramStride = 3

// latinWordRegex matches runs of ASCII letters, Latin-1 accented letters,
// digits and apostrophes.
var latinWordRegex = regexp.MustCompile(`[A-Za-zÀ-ÖØ-öø-ÿ0-9']+`)

// Select picks the strategy for text under hint. An ideographic hint or any
// kana/ideograph in the text selects the ideographic path.
func Select(text string, hint lang.Tag) Strategy {
	if lang.IsIdeographic(hint) || lang.HasKana(text) || lang.HasIdeograph(text) {
		return Strategy{Kind: KindIdeographic}
	}
	if !lang.IsSupported(hint) {
		hint = lang.Base
	}
	return Strategy{Kind: KindLatin, Lang: hint}
}

// Tokenize converts text into an ordered token sequence.
// Empty or whitespace-only input yields an empty slice.
func Tokenize(text string, hint lang.Tag) []string {
	t := strings.TrimSpace(norm.NFC.String(text))
	if t == "" {
		return []string{}
	}
	return Select(t, hint).Tokenize(t)
}

// Tokenize applies the strategy to text.
func (s Strategy) Tokenize(text string) []string {
	switch s.Kind {
	case KindIdeographic:
		return tokenizeIdeographic(text)
	default:
		return tokenizeLatin(text, s.Lang)
	}
}

func tokenizeIdeographic(text string) []string {
	chars := make([]string, 0, len(text)/3)
	for _, r := range text {
		if lang.IsKana(r) || lang.IsIdeograph(r) {
			chars = append(chars, string(r))
		}
	}
	if len(chars) < 2 {
		return chars
	}

	tokens := make([]string, 0, len(chars)-1+(len(chars)+unigramStride-1)/unigramStride)
	for i := 0; i+1 < len(chars); i++ {
		tokens = append(tokens, chars[i]+chars[i+1])
	}
	for i := 0; i < len(chars); i += unigramStride {
		tokens = append(tokens, chars[i])
	}
	return tokens
}

func tokenizeLatin(text string, tag lang.Tag) []string {
	words := latinWordRegex.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return []string{}
	}

	stop := StopWordsFor(tag)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 1 {
			continue
		}
		if _, isStop := stop[w]; isStop {
			continue
		}
		tokens = append(tokens, Stem(w))
	}
	return tokens
}

// Stem applies the plural normalization: "ies" (length > 4) becomes "y",
// otherwise a trailing "s" (length > 3) is dropped. It never fails.
func Stem(w string) string {
	n := utf8.RuneCountInString(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case n > 3 && strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	default:
		return w
	}
}

// TermFrequency counts occurrences of each token.
func TermFrequency(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}
