package tokenize

import (
	"strings"

	"github.com/Aman-CERP/kbsearch/internal/lang"
)

// stopWordLists holds the raw stop words per language. Languages without an
// entry (zh, ja) never reach the Latin path; unsupported ones use English.
var stopWordLists = map[lang.Tag][]string{
	lang.English: {
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "when", "while",
		"for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been",
		"this", "that", "these", "those", "it", "its", "you", "your", "i", "me", "my", "we", "our", "they", "them",
		"from", "into", "over", "under", "about", "above", "below", "up", "down", "out", "off",
	},
	lang.Indonesian: {
		"yang", "dan", "atau", "tapi", "jika", "maka", "ketika", "sementara",
		"untuk", "ke", "dari", "di", "pada", "oleh", "dengan", "sebagai", "adalah",
		"ini", "itu", "tersebut", "saya", "aku", "kamu", "anda", "kita", "kami", "mereka",
	},
	lang.Spanish: {
		"el", "la", "los", "las", "y", "o", "pero", "si", "entonces", "cuando", "mientras",
		"para", "de", "en", "con", "como", "es", "son", "soy",
	},
	lang.French: {
		"le", "la", "les", "et", "ou", "mais", "si", "donc", "quand", "pendant",
		"pour", "de", "en", "avec", "comme", "est", "sont", "je", "tu", "nous", "vous",
	},
	lang.Portuguese: {
		"o", "a", "os", "as", "e", "ou", "mas", "se", "então", "quando", "enquanto",
		"para", "de", "em", "com", "como", "é", "são", "eu", "você", "nós",
	},
}

// stopWords is the lookup form of stopWordLists.
var stopWords = buildStopWordTables(stopWordLists)

func buildStopWordTables(lists map[lang.Tag][]string) map[lang.Tag]map[string]struct{} {
	tables := make(map[lang.Tag]map[string]struct{}, len(lists))
	for tag, words := range lists {
		tables[tag] = BuildStopWordMap(words)
	}
	return tables
}

// StopWordsFor returns the stop word set for t, falling back to English.
func StopWordsFor(t lang.Tag) map[string]struct{} {
	if sw, ok := stopWords[t]; ok {
		return sw
	}
	return stopWords[lang.English]
}

// BuildStopWordMap converts a slice of stop words to a map for efficient lookup.
func BuildStopWordMap(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, word := range words {
		m[strings.ToLower(word)] = struct{}{}
	}
	return m
}
