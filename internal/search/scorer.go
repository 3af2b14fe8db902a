package search

import (
	"sort"

	"github.com/Aman-CERP/kbsearch/internal/index"
)

// BM25 parameters.
const (
	// K1 is the term frequency saturation parameter.
	K1 = 1.4

	// B is the length normalization strength.
	B = 0.75
)

// Hit is a scored position in an index.
type Hit struct {
	Pos   int
	Score float64
}

// Score computes the BM25 score of c for the query tokens. Repeated query
// tokens contribute once per occurrence; unknown terms contribute nothing.
func Score(ix *index.Index, c *index.Chunk, queryTokens []string) float64 {
	avgdl := ix.AvgDL()
	if avgdl <= 0 {
		return 0
	}

	dl := float64(c.Len())
	norm := K1 * (1 - B + B*dl/avgdl)

	var score float64
	for _, t := range queryTokens {
		tf := c.TF[t]
		if tf <= 0 {
			continue
		}
		idf, ok := ix.IDF(t)
		if !ok {
			continue
		}
		ftf := float64(tf)
		score += idf * (ftf * (K1 + 1)) / (ftf + norm)
	}
	return score
}

// Rank scores every chunk and returns up to k hits with score > 0, highest
// first. Equal scores keep index order.
func Rank(ix *index.Index, queryTokens []string, k int) []Hit {
	if ix == nil || len(queryTokens) == 0 || ix.Len() == 0 {
		return nil
	}

	hits := make([]Hit, 0, 16)
	for i := range ix.Len() {
		if s := Score(ix, ix.Chunk(i), queryTokens); s > 0 {
			hits = append(hits, Hit{Pos: i, Score: s})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < 1 {
		k = 1
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
