package lang

import (
	"regexp"
	"strings"
)

// DefaultDetectThreshold is the minimum confidence for accepting a detected
// language on document sources.
const DefaultDetectThreshold = 0.6

// maxDetectWords bounds how many words are scored during detection.
const maxDetectWords = 120

var latinWordRegex = regexp.MustCompile(`[A-Za-zÀ-ÖØ-öø-ÿ']+`)

// detectStopWords are short seed lists used only for detection scoring.
// Order matters for tie-breaking: earlier languages win ties.
var detectStopWords = []struct {
	tag   Tag
	words map[string]struct{}
}{
	{English, set("the", "and", "is", "are", "what", "how", "why", "can", "do", "with", "from")},
	{Indonesian, set("yang", "dan", "atau", "itu", "ini", "apa", "bagaimana", "kenapa", "bisa", "dengan", "dari")},
	{Spanish, set("el", "la", "y", "o", "que", "cómo", "por", "para", "con", "desde")},
	{French, set("le", "la", "et", "ou", "que", "comment", "pour", "avec", "depuis")},
	{Portuguese, set("o", "a", "e", "ou", "que", "como", "por", "para", "com", "desde")},
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// HeuristicResolver is an offline, deterministic Resolver.
// Kana marks Japanese, CJK ideographs without kana mark Chinese, and Latin
// text is scored against small stopword lists.
type HeuristicResolver struct{}

// NewResolver returns the default heuristic resolver.
func NewResolver() *HeuristicResolver {
	return &HeuristicResolver{}
}

// Normalize implements Resolver.
func (HeuristicResolver) Normalize(code string) (Tag, bool) {
	return Normalize(code)
}

// Detect implements Resolver.
func (HeuristicResolver) Detect(text string) Guess {
	t := strings.TrimSpace(text)
	if t == "" {
		return Guess{Tag: English, Confidence: 0.1}
	}
	if HasKana(t) {
		return Guess{Tag: Japanese, Confidence: 0.95}
	}
	if HasIdeograph(t) {
		return Guess{Tag: Chinese, Confidence: 0.85}
	}

	words := latinWordRegex.FindAllString(strings.ToLower(t), -1)
	if len(words) == 0 {
		return Guess{Tag: English, Confidence: 0.2}
	}
	if len(words) > maxDetectWords {
		words = words[:maxDetectWords]
	}

	scores := make([]int, len(detectStopWords))
	for _, w := range words {
		for i, sw := range detectStopWords {
			if _, ok := sw.words[w]; ok {
				scores[i]++
			}
		}
	}

	best, total := 0, 0
	for i, s := range scores {
		total += s
		if s > scores[best] {
			best = i
		}
	}
	bestScore := scores[best]
	if bestScore == 0 {
		return Guess{Tag: English, Confidence: 0.35}
	}

	conf := min(0.9, 0.45+float64(bestScore)/float64(len(words))*4.0)
	// Mixed signals: cap so callers with a 0.6 threshold still accept only clear wins.
	if float64(bestScore)/float64(total) < 0.4 {
		conf = min(conf, 0.6)
	}
	return Guess{Tag: detectStopWords[best].tag, Confidence: conf}
}

// HasKana reports whether s contains Hiragana or Katakana.
func HasKana(s string) bool {
	for _, r := range s {
		if IsKana(r) {
			return true
		}
	}
	return false
}

// HasIdeograph reports whether s contains a CJK unified ideograph.
func HasIdeograph(s string) bool {
	for _, r := range s {
		if IsIdeograph(r) {
			return true
		}
	}
	return false
}

// IsKana reports whether r is Hiragana, Katakana or a Katakana phonetic extension.
func IsKana(r rune) bool {
	return (r >= 0x3040 && r <= 0x30FF) || (r >= 0x31F0 && r <= 0x31FF)
}

// IsIdeograph reports whether r is in the CJK Unified Ideographs block.
func IsIdeograph(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

var _ Resolver = (*HeuristicResolver)(nil)
