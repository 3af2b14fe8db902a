// Package search ranks knowledge-base chunks against queries with BM25.
//
// The Engine owns the current index snapshot behind an atomic pointer.
// Searches read the pointer and scan without locks; loads build a new
// snapshot and swap it in, so a reader never sees a half-built index.
package search

import (
	"time"

	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/lang"
)

// State is the lifecycle state of an Engine.
type State int32

const (
	// StateUninitialized means no index has been built yet.
	StateUninitialized State = iota
	// StateReady means a snapshot is published and searches use it.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Result is one ranked chunk.
type Result struct {
	ChunkID string   `json:"chunk_id"`
	Title   string   `json:"title"`
	Source  string   `json:"source"`
	Lang    lang.Tag `json:"lang"`
	Text    string   `json:"text"`
	Score   float64  `json:"score"`
}

// Stats summarizes the current snapshot.
type Stats struct {
	State        string           `json:"state"`
	Generation   uint64           `json:"generation"`
	Chunks       int              `json:"chunks"`
	Terms        int              `json:"terms"`
	AvgDL        float64          `json:"avgdl"`
	BuiltAt      time.Time        `json:"built_at,omitzero"`
	Duration     time.Duration    `json:"duration_ns"`
	Skipped      index.Skipped    `json:"skipped"`
	TopTerms     []index.TermStat `json:"top_terms,omitempty"`
	CacheEntries int              `json:"cache_entries"`
}
