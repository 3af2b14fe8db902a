// Package telemetry collects in-process query statistics for the search
// server. Nothing leaves the process; counters reset on restart.
package telemetry

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/tokenize"
)

// LatencyBucket is a histogram bucket for query latency.
type LatencyBucket string

const (
	BucketUnder1ms   LatencyBucket = "lt_1ms"
	BucketUnder5ms   LatencyBucket = "lt_5ms"
	BucketUnder20ms  LatencyBucket = "lt_20ms"
	BucketUnder100ms LatencyBucket = "lt_100ms"
	BucketSlow       LatencyBucket = "ge_100ms"
)

// LatencyToBucket maps a duration to its bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	switch {
	case d < time.Millisecond:
		return BucketUnder1ms
	case d < 5*time.Millisecond:
		return BucketUnder5ms
	case d < 20*time.Millisecond:
		return BucketUnder20ms
	case d < 100*time.Millisecond:
		return BucketUnder100ms
	default:
		return BucketSlow
	}
}

// QueryEvent is one answered search.
type QueryEvent struct {
	Query   string
	Lang    lang.Tag
	Results int
	Latency time.Duration
}

// Ring is a fixed-capacity FIFO that evicts its oldest item when full.
// It is not safe for concurrent use on its own.
type Ring[T any] struct {
	items []T
	head  int
	size  int
}

// NewRing creates a ring holding up to capacity items (default 100).
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Add appends item, evicting the oldest one when full.
func (r *Ring[T]) Add(item T) {
	r.items[r.head] = item
	r.head = (r.head + 1) % len(r.items)
	if r.size < len(r.items) {
		r.size++
	}
}

// Items returns the contents oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, r.size)
	if r.size < len(r.items) {
		return append(out, r.items[:r.size]...)
	}
	out = append(out, r.items[r.head:]...)
	return append(out, r.items[:r.head]...)
}

// Len returns the number of items held.
func (r *Ring[T]) Len() int { return r.size }

// TermCount is a query term and how often it was asked for.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time copy of the collected metrics.
type Snapshot struct {
	TotalQueries      int64                   `json:"total_queries"`
	ZeroResultCount   int64                   `json:"zero_result_count"`
	ByLanguage        map[lang.Tag]int64      `json:"by_language"`
	Latency           map[LatencyBucket]int64 `json:"latency"`
	TopTerms          []TermCount             `json:"top_terms"`
	ZeroResultQueries []string                `json:"zero_result_queries"`
	Since             time.Time               `json:"since"`
}

// ZeroResultRate returns the share of queries that found nothing, in [0,1].
func (s Snapshot) ZeroResultRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalQueries)
}

// Config bounds the memory the collector uses.
type Config struct {
	// MaxTerms is how many distinct query terms are tracked (LRU evicted).
	MaxTerms int
	// MaxZeroResults is how many recent zero-result queries are kept.
	MaxZeroResults int
	// TopTerms is how many terms a snapshot reports.
	TopTerms int
}

// DefaultConfig returns the collector defaults.
func DefaultConfig() Config {
	return Config{MaxTerms: 1000, MaxZeroResults: 50, TopTerms: 10}
}

// QueryMetrics aggregates QueryEvents. It is safe for concurrent use.
type QueryMetrics struct {
	cfg Config

	mu         sync.Mutex
	total      int64
	zero       int64
	byLang     map[lang.Tag]int64
	latency    map[LatencyBucket]int64
	terms      *lru.Cache[string, int64]
	zeroRecent *Ring[string]
	since      time.Time
}

// NewQueryMetrics creates a collector. Zero fields of cfg take defaults.
func NewQueryMetrics(cfg Config) *QueryMetrics {
	def := DefaultConfig()
	if cfg.MaxTerms <= 0 {
		cfg.MaxTerms = def.MaxTerms
	}
	if cfg.MaxZeroResults <= 0 {
		cfg.MaxZeroResults = def.MaxZeroResults
	}
	if cfg.TopTerms <= 0 {
		cfg.TopTerms = def.TopTerms
	}
	m := &QueryMetrics{cfg: cfg}
	m.reset()
	return m
}

func (m *QueryMetrics) reset() {
	// lru.New only fails for a non-positive size.
	terms, _ := lru.New[string, int64](m.cfg.MaxTerms)
	m.total = 0
	m.zero = 0
	m.byLang = make(map[lang.Tag]int64)
	m.latency = make(map[LatencyBucket]int64)
	m.terms = terms
	m.zeroRecent = NewRing[string](m.cfg.MaxZeroResults)
	m.since = time.Now()
}

// Record adds one query. Terms are counted after tokenization in the query
// language, so stop words never show up as popular terms.
func (m *QueryMetrics) Record(e QueryEvent) {
	tokens := tokenize.Tokenize(e.Query, e.Lang)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	m.byLang[e.Lang]++
	m.latency[LatencyToBucket(e.Latency)]++
	if e.Results == 0 {
		m.zero++
		m.zeroRecent.Add(strings.TrimSpace(e.Query))
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		n, _ := m.terms.Get(t)
		m.terms.Add(t, n+1)
	}
}

// Snapshot returns a copy of the current metrics.
func (m *QueryMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		TotalQueries:      m.total,
		ZeroResultCount:   m.zero,
		ByLanguage:        make(map[lang.Tag]int64, len(m.byLang)),
		Latency:           make(map[LatencyBucket]int64, len(m.latency)),
		ZeroResultQueries: m.zeroRecent.Items(),
		Since:             m.since,
	}
	for k, v := range m.byLang {
		s.ByLanguage[k] = v
	}
	for k, v := range m.latency {
		s.Latency[k] = v
	}

	terms := make([]TermCount, 0, m.terms.Len())
	for _, k := range m.terms.Keys() {
		if n, ok := m.terms.Peek(k); ok {
			terms = append(terms, TermCount{Term: k, Count: n})
		}
	}
	slices.SortFunc(terms, func(a, b TermCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Term, b.Term)
	})
	if len(terms) > m.cfg.TopTerms {
		terms = terms[:m.cfg.TopTerms]
	}
	s.TopTerms = terms
	return s
}

// Reset clears all counters and restarts the Since clock.
func (m *QueryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}
