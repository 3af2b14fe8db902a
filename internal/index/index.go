// Package index builds immutable BM25 snapshots of the knowledge base.
//
// An Index is constructed once by a Loader and never mutated afterwards, so
// any number of goroutines may read it without coordination. A reload builds
// a fresh Index; the previous one stays valid for readers still holding it.
package index

import (
	"math"
	"sort"
	"time"

	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/source"
)

// Chunk is one scorable span of source text.
type Chunk struct {
	// ID is "doc:<stem>:<i>" for documents and "pack:<stem>:<line>:<i>" for records.
	ID     string
	Title  string
	Source string // file name the chunk came from
	Kind   source.Kind
	Lang   lang.Tag
	Text   string

	Tokens []string
	TF     map[string]int
}

// Len returns the chunk length used for BM25 normalization (at least 1).
func (c *Chunk) Len() int {
	return max(1, len(c.Tokens))
}

// Skipped counts content dropped during a load.
type Skipped struct {
	// Sources is the number of unreadable files or unparsable records.
	Sources int
	// EmptyChunks is the number of chunks that tokenized to nothing.
	EmptyChunks int
}

// Index is an immutable BM25 snapshot.
type Index struct {
	chunks   []Chunk
	byID     map[string]int
	df       map[string]int
	idf      map[string]float64
	avgdl    float64
	totalLen int

	generation uint64
	builtAt    time.Time
	duration   time.Duration
	skipped    Skipped
}

// TermStat describes one vocabulary entry.
type TermStat struct {
	Term string  `json:"term"`
	DF   int     `json:"df"`
	IDF  float64 `json:"idf"`
}

// IDF is the BM25 inverse document frequency with +0.5 smoothing.
// It is not clamped: a term present in nearly every chunk gets a value at
// or slightly below zero.
func IDF(n, df int) float64 {
	return math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
}

// Len returns the number of chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Chunk returns the i-th chunk in load order.
func (ix *Index) Chunk(i int) *Chunk { return &ix.chunks[i] }


// Lookup returns the chunk with the given ID.
func (ix *Index) Lookup(id string) (*Chunk, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return nil, false
	}
	return &ix.chunks[i], true
}

// DocFreq returns the number of chunks containing term.
func (ix *Index) DocFreq(term string) int { return ix.df[term] }

// IDF returns the precomputed idf for term and whether it is in the vocabulary.
func (ix *Index) IDF(term string) (float64, bool) {
	v, ok := ix.idf[term]
	return v, ok
}

// AvgDL returns the average chunk length in tokens.
func (ix *Index) AvgDL() float64 { return ix.avgdl }

// TermCount returns the vocabulary size.
func (ix *Index) TermCount() int { return len(ix.df) }

// Generation is the load sequence number of this snapshot, starting at 1.
func (ix *Index) Generation() uint64 { return ix.generation }

// BuiltAt returns when the snapshot finished building.
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }

// Duration returns how long the build took.
func (ix *Index) Duration() time.Duration { return ix.duration }

// Skipped returns what the load dropped.
func (ix *Index) Skipped() Skipped { return ix.skipped }

// TopTerms returns the n terms with the highest document frequency,
// ties broken alphabetically. n <= 0 returns every term.
func (ix *Index) TopTerms(n int) []TermStat {
	stats := make([]TermStat, 0, len(ix.df))
	for term, df := range ix.df {
		stats = append(stats, TermStat{Term: term, DF: df, IDF: ix.idf[term]})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].DF != stats[j].DF {
			return stats[i].DF > stats[j].DF
		}
		return stats[i].Term < stats[j].Term
	})
	if n > 0 && n < len(stats) {
		stats = stats[:n]
	}
	return stats
}

// builder accumulates chunks and document frequencies for one load.
type builder struct {
	chunks   []Chunk
	df       map[string]int
	totalLen int
	skipped  Skipped
}

func newBuilder() *builder {
	return &builder{df: make(map[string]int)}
}

// add appends c and counts each distinct term once toward df.
func (b *builder) add(c Chunk) {
	for term := range c.TF {
		b.df[term]++
	}
	b.totalLen += len(c.Tokens)
	b.chunks = append(b.chunks, c)
}

// finish computes avgdl and idf and seals the snapshot.
func (b *builder) finish(generation uint64, started time.Time) *Index {
	n := len(b.chunks)
	idf := make(map[string]float64, len(b.df))
	for term, df := range b.df {
		idf[term] = IDF(n, df)
	}

	byID := make(map[string]int, n)
	for i, c := range b.chunks {
		byID[c.ID] = i
	}

	now := time.Now()
	return &Index{
		chunks:     b.chunks,
		byID:       byID,
		df:         b.df,
		idf:        idf,
		avgdl:      float64(b.totalLen) / float64(max(1, n)),
		totalLen:   b.totalLen,
		generation: generation,
		builtAt:    now,
		duration:   now.Sub(started),
		skipped:    b.skipped,
	}
}
