package search

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/source"
	"github.com/Aman-CERP/kbsearch/internal/tokenize"
)

// Default engine settings.
const (
	DefaultK         = 4
	MaxK             = 10
	DefaultCacheSize = 256
)

type cacheKey struct {
	generation uint64
	lang       lang.Tag
	k          int
	query      string
}

// Engine serves BM25 searches over the current index snapshot.
type Engine struct {
	loader *index.Loader
	logger *slog.Logger

	maxK      int
	cacheSize int
	threshold float64

	// mu serializes loads and guards provider.
	mu       sync.Mutex
	provider source.Provider

	current atomic.Pointer[index.Index]
	cache   *lru.Cache[cacheKey, []Result]
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxK sets the upper bound for k. Values outside [1,10] are ignored.
func WithMaxK(k int) EngineOption {
	return func(e *Engine) {
		if k >= 1 && k <= MaxK {
			e.maxK = k
		}
	}
}

// WithCacheSize sets the result cache capacity. Zero disables caching.
func WithCacheSize(n int) EngineOption {
	return func(e *Engine) {
		e.cacheSize = max(0, n)
	}
}

// WithDetectThreshold sets the minimum confidence for detecting the query
// language when no hint is given.
func WithDetectThreshold(t float64) EngineOption {
	return func(e *Engine) {
		if t > 0 && t <= 1 {
			e.threshold = t
		}
	}
}

// NewEngine creates an engine in StateUninitialized. Nothing is loaded until
// Load, Reload or the first Search.
func NewEngine(loader *index.Loader, provider source.Provider, opts ...EngineOption) *Engine {
	if loader == nil {
		loader = index.NewLoader(nil, index.DefaultLoaderConfig(), nil)
	}
	e := &Engine{
		loader:    loader,
		logger:    slog.Default(),
		maxK:      MaxK,
		cacheSize: DefaultCacheSize,
		threshold: lang.DefaultDetectThreshold,
		provider:  provider,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize > 0 {
		e.cache, _ = lru.New[cacheKey, []Result](e.cacheSize)
	}
	return e
}

// State reports whether a snapshot has been published.
func (e *Engine) State() State {
	if e.current.Load() == nil {
		return StateUninitialized
	}
	return StateReady
}

// SetProvider replaces the source provider used by later loads.
// The current snapshot is kept until the next Reload.
func (e *Engine) SetProvider(p source.Provider) {
	e.mu.Lock()
	e.provider = p
	e.mu.Unlock()
}

// Load builds the first snapshot if none exists and returns the current one.
// It is a no-op once the engine is ready.
func (e *Engine) Load() *index.Index {
	if ix := e.current.Load(); ix != nil {
		return ix
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Another caller may have finished the first load while we waited.
	if ix := e.current.Load(); ix != nil {
		return ix
	}
	return e.rebuildLocked("initial")
}

// Reload builds a fresh snapshot from the current provider and swaps it in.
// Searches already running keep the snapshot they started with.
func (e *Engine) Reload() *index.Index {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rebuildLocked("reload")
}

func (e *Engine) rebuildLocked(reason string) *index.Index {
	ix := e.loader.Load(e.provider)
	prev := e.current.Swap(ix)
	if e.cache != nil {
		e.cache.Purge()
	}

	attrs := []any{
		slog.String("reason", reason),
		slog.Uint64("generation", ix.Generation()),
		slog.Int("chunks", ix.Len()),
	}
	if prev != nil {
		attrs = append(attrs, slog.Uint64("previous_generation", prev.Generation()))
	}
	e.logger.Info("index_swapped", attrs...)
	return ix
}

// Snapshot returns the current index, loading it first if necessary.
func (e *Engine) Snapshot() *index.Index {
	return e.Load()
}

// ClampK limits k to [1, max k].
func (e *Engine) ClampK(k int) int {
	return min(max(k, 1), e.maxK)
}

// Resolver returns the language resolver shared with the loader.
func (e *Engine) Resolver() lang.Resolver {
	return e.loader.Resolver()
}

// QueryLanguage resolves the language used to tokenize a query.
func (e *Engine) QueryLanguage(query, hint string) lang.Tag {
	if strings.TrimSpace(hint) != "" {
		if _, ok := e.loader.Resolver().Normalize(hint); !ok {
			e.logger.Debug("language_fallback",
				slog.String("hint", hint),
				slog.String("error_code", kberrors.ErrCodeUnsupportedLanguage))
		}
	}
	return lang.Resolve(e.loader.Resolver(), hint, query, e.threshold)
}

// Search returns up to k chunks ranked by BM25. k is clamped to [1,10].
// An empty hint triggers detection; an unsupported hint uses the base
// language. Queries that tokenize to nothing return no results.
// The first Search on an uninitialized engine loads the index.
func (e *Engine) Search(query string, k int, hint string) []Result {
	results, _ := e.SearchWithSnapshot(query, k, hint)
	return results
}

// SearchWithSnapshot is Search that also returns the snapshot the results
// were scored against. Chunk IDs in the results always resolve in it, even
// if a reload has swapped the engine's current index since.
func (e *Engine) SearchWithSnapshot(query string, k int, hint string) ([]Result, *index.Index) {
	start := time.Now()
	ix := e.Load()
	k = e.ClampK(k)
	tag := e.QueryLanguage(query, hint)

	key := cacheKey{generation: ix.Generation(), lang: tag, k: k, query: query}
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			return slices.Clone(cached), ix
		}
	}

	tokens := tokenize.Tokenize(query, tag)
	hits := Rank(ix, tokens, k)

	results := make([]Result, len(hits))
	for i, h := range hits {
		c := ix.Chunk(h.Pos)
		results[i] = Result{
			ChunkID: c.ID,
			Title:   c.Title,
			Source:  c.Source,
			Lang:    c.Lang,
			Text:    c.Text,
			Score:   h.Score,
		}
	}

	if e.cache != nil {
		e.cache.Add(key, slices.Clone(results))
	}

	e.logger.Debug("search_complete",
		slog.String("lang", string(tag)),
		slog.Int("k", k),
		slog.Int("query_tokens", len(tokens)),
		slog.Int("results", len(results)),
		slog.Uint64("generation", ix.Generation()),
		slog.Duration("latency", time.Since(start)))
	return results, ix
}

// Stats describes the current snapshot without triggering a load.
// top bounds the number of document-frequency terms returned.
func (e *Engine) Stats(top int) Stats {
	st := Stats{State: e.State().String()}
	if e.cache != nil {
		st.CacheEntries = e.cache.Len()
	}

	ix := e.current.Load()
	if ix == nil {
		return st
	}
	st.Generation = ix.Generation()
	st.Chunks = ix.Len()
	st.Terms = ix.TermCount()
	st.AvgDL = ix.AvgDL()
	st.BuiltAt = ix.BuiltAt()
	st.Duration = ix.Duration()
	st.Skipped = ix.Skipped()
	if top > 0 {
		st.TopTerms = ix.TopTerms(top)
	}
	return st
}
