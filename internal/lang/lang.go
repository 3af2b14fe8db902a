// Package lang resolves language hints for the knowledge base.
//
// The supported set is closed: English, Mandarin Chinese, Japanese, French,
// Portuguese, Spanish and Indonesian. Anything else normalizes to "no tag" and
// callers fall back to [Base].
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Tag is a supported language code.
type Tag string

// Supported language tags.
const (
	English    Tag = "en"
	Chinese    Tag = "zh"
	Japanese   Tag = "ja"
	French     Tag = "fr"
	Portuguese Tag = "pt"
	Spanish    Tag = "es"
	Indonesian Tag = "id"
)

// Base is the fallback language for unknown or low-confidence input.
const Base = English

// supported maps each tag to its display name.
var supported = map[Tag]string{
	English:    "English",
	Chinese:    "Mandarin Chinese",
	Japanese:   "Japanese",
	French:     "French",
	Portuguese: "Portuguese",
	Spanish:    "Spanish",
	Indonesian: "Indonesian",
}

// aliases maps common spellings to tags.
var aliases = map[string]Tag{
	"eng":        English,
	"english":    English,
	"cn":         Chinese,
	"zh-cn":      Chinese,
	"zh-hans":    Chinese,
	"mandarin":   Chinese,
	"chinese":    Chinese,
	"jp":         Japanese,
	"jpn":        Japanese,
	"japanese":   Japanese,
	"fra":        French,
	"french":     French,
	"por":        Portuguese,
	"pt-br":      Portuguese,
	"portuguese": Portuguese,
	"spa":        Spanish,
	"spanish":    Spanish,
	"indo":       Indonesian,
	"bahasa":     Indonesian,
	"indonesian": Indonesian,
}

// Guess is the result of language detection.
type Guess struct {
	Tag        Tag
	Confidence float64 // 0..1
}

// Resolver maps free text or explicit codes to supported tags.
type Resolver interface {
	// Normalize maps a code or alias to a supported tag.
	// The second return value is false when the code is empty or unsupported.
	Normalize(code string) (Tag, bool)

	// Detect guesses the language of text with a confidence in [0,1].
	Detect(text string) Guess
}

// Normalize maps a language code or alias to a supported tag.
func Normalize(code string) (Tag, bool) {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" {
		return "", false
	}
	if t, ok := aliases[c]; ok {
		return t, true
	}
	t := Tag(c)
	if _, ok := supported[t]; ok {
		return t, true
	}
	// BCP 47 forms such as "pt-BR" or "zh-Hant-TW" resolve to their base language.
	if parsed, err := language.Parse(c); err == nil {
		base, _ := parsed.Base()
		if t := Tag(base.String()); IsSupported(t) {
			return t, true
		}
	}
	return "", false
}

// IsSupported reports whether t is in the closed tag set.
func IsSupported(t Tag) bool {
	_, ok := supported[t]
	return ok
}

// IsIdeographic reports whether t uses the ideographic tokenization path.
func IsIdeographic(t Tag) bool {
	return t == Chinese || t == Japanese
}

// Name returns the display name for t, or the raw code if unsupported.
func Name(t Tag) string {
	if n, ok := supported[t]; ok {
		return n
	}
	return string(t)
}

// Tags returns all supported tags in a stable order.
func Tags() []Tag {
	return []Tag{English, Chinese, Japanese, French, Portuguese, Spanish, Indonesian}
}

// Resolve picks the tag for a hint. An explicit supported hint wins; an empty
// hint falls back to detection accepted at or above threshold; anything else
// resolves to Base.
func Resolve(r Resolver, hint, text string, threshold float64) Tag {
	if strings.TrimSpace(hint) != "" {
		if t, ok := r.Normalize(hint); ok {
			return t
		}
		return Base
	}
	g := r.Detect(text)
	if g.Confidence >= threshold && IsSupported(g.Tag) {
		return g.Tag
	}
	return Base
}
