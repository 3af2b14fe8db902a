// Package source supplies raw knowledge-base content to the index loader.
//
// A Provider yields Items in a deterministic order: flat documents whose
// language is unknown, and pre-segmented records that carry their own title
// and language. Read failures are yielded as errors next to the item they
// belong to so the consumer can log them and keep going.
package source

import (
	"fmt"
	"iter"
	"path/filepath"
	"strings"
)

// Kind distinguishes raw documents from pre-segmented records.
type Kind int

const (
	// KindDocument is a flat text file with a filename-derived title.
	KindDocument Kind = iota
	// KindRecord is one line of a record pack with explicit metadata.
	KindRecord
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// DefaultRecordTitle is used for records without a title field.
const DefaultRecordTitle = "Knowledge Pack"

// Item is one unit of source text.
type Item struct {
	Kind Kind

	// SourceID is the file name the item came from (e.g. "intro.md").
	SourceID string

	// Stem is SourceID without its extensions; it prefixes chunk identities.
	Stem string

	// Line is the 0-based line number for records. Zero for documents.
	Line int

	Title string

	// Lang is the raw language code. Empty means unknown.
	Lang string

	Text string
}

// ChunkID returns the identity of the i-th chunk cut from this item.
func (it Item) ChunkID(i int) string {
	if it.Kind == KindRecord {
		return fmt.Sprintf("pack:%s:%d:%d", it.Stem, it.Line, i)
	}
	return fmt.Sprintf("doc:%s:%d", it.Stem, i)
}

// Provider yields items in a stable order. A non-nil error accompanies an
// item that could not be read; the item then carries only its identity.
type Provider interface {
	Items() iter.Seq2[Item, error]
}

// Stem strips every known extension from a file name.
func Stem(name string) string {
	base := filepath.Base(name)
	lower := strings.ToLower(base)
	for _, ext := range []string{".jsonl.gz", ".jsonl", ".md", ".txt"} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
