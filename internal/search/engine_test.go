package search

import (
	"bytes"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/source"
)

// countingProvider records how many times it was consumed.
type countingProvider struct {
	items source.Memory
	calls atomic.Int32
}

func (p *countingProvider) Items() iter.Seq2[source.Item, error] {
	p.calls.Add(1)
	return p.items.Items()
}

func newTestEngine(p source.Provider, opts ...EngineOption) *Engine {
	loader := index.NewLoader(nil, index.DefaultLoaderConfig(), quietLogger())
	return NewEngine(loader, p, append([]EngineOption{WithLogger(quietLogger())}, opts...)...)
}

func sampleCorpus() source.Memory {
	return source.Memory{
		docItem("bm25", "BM25 is a ranking function used by search engines to estimate relevance."),
		docItem("chunking", "Documents are split into paragraphs before they are indexed for retrieval."),
	}
}

func TestEngine_ScenarioA_LiteralMatchRanksFirst(t *testing.T) {
	// Given: two documents, only one mentions bm25
	e := newTestEngine(sampleCorpus())

	// When: searching for BM25
	results := e.Search("BM25", 3, "")

	// Then: that chunk comes first with a positive score
	require.NotEmpty(t, results)
	assert.Equal(t, "doc:bm25:0", results[0].ChunkID)
	assert.Equal(t, "Bm25", results[0].Title)
	assert.Equal(t, "bm25.md", results[0].Source)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestEngine_ScenarioB_NoMatchIsEmpty(t *testing.T) {
	e := newTestEngine(sampleCorpus())

	results := e.Search("zzzznotpresent", 4, "")

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestEngine_EmptyQueryTokens(t *testing.T) {
	e := newTestEngine(sampleCorpus())

	assert.Empty(t, e.Search("", 4, ""))
	assert.Empty(t, e.Search("the and of", 4, "en"))
	assert.Empty(t, e.Search("!!! ???", 4, ""))
}

func TestEngine_LazyLoadHappensOnce(t *testing.T) {
	// Given: an engine that has not loaded
	p := &countingProvider{items: sampleCorpus()}
	e := newTestEngine(p)
	require.Equal(t, StateUninitialized, e.State())
	assert.Equal(t, "uninitialized", e.Stats(0).State)

	// When: many goroutines search at once
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Search("ranking", 2, "en")
		}()
	}
	wg.Wait()

	// Then: the provider was consumed exactly once and the engine is ready
	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, StateReady, e.State())
	assert.Equal(t, uint64(1), e.Stats(0).Generation)
}

func TestEngine_LoadIsIdempotent(t *testing.T) {
	p := &countingProvider{items: sampleCorpus()}
	e := newTestEngine(p)

	first := e.Load()
	second := e.Load()

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestEngine_ReloadSwapsSnapshot(t *testing.T) {
	// Given: a ready engine with two sources
	e := newTestEngine(sampleCorpus())
	old := e.Load()
	require.NotEmpty(t, e.Search("paragraphs", 4, "en"))

	// When: reloading with one source removed
	e.SetProvider(source.Memory{sampleCorpus()[0]})
	fresh := e.Reload()

	// Then: the new snapshot lacks the removed terms and the old one is intact
	assert.NotSame(t, old, fresh)
	assert.Empty(t, e.Search("paragraphs", 4, "en"))
	assert.Equal(t, 0, fresh.DocFreq("paragraph"))
	assert.Equal(t, 1, old.DocFreq("paragraph"))
	assert.Equal(t, fresh.Generation(), e.Stats(0).Generation)
}

func TestEngine_SearchWithSnapshotSurvivesReload(t *testing.T) {
	// Given: results scored against the first snapshot
	e := newTestEngine(sampleCorpus(), WithCacheSize(0))
	results, scored := e.SearchWithSnapshot("ranking function", 4, "en")
	require.Len(t, results, 1)
	require.Equal(t, "doc:bm25:0", results[0].ChunkID)

	// When: a reload reuses the same chunk ID for different text
	e.SetProvider(source.Memory{docItem("bm25", "Okapi weighting saturates term frequency.")})
	fresh := e.Reload()

	// Then: the returned snapshot still holds the scored chunk
	assert.Less(t, scored.Generation(), fresh.Generation())
	c, ok := scored.Lookup(results[0].ChunkID)
	require.True(t, ok)
	assert.Equal(t, results[0].Text, c.Text)
	assert.Positive(t, c.TF["ranking"])

	now, ok := fresh.Lookup(results[0].ChunkID)
	require.True(t, ok)
	assert.Zero(t, now.TF["ranking"])
}

func TestEngine_SearchWithSnapshotFromCache(t *testing.T) {
	e := newTestEngine(sampleCorpus())
	_, first := e.SearchWithSnapshot("ranking", 4, "en")
	_, second := e.SearchWithSnapshot("ranking", 4, "en")
	assert.Same(t, first, second)
}

func TestEngine_KClamp(t *testing.T) {
	items := make(source.Memory, 0, 15)
	for i := range 15 {
		items = append(items, docItem(fmt.Sprintf("d%02d", i), "shared term"))
	}
	e := newTestEngine(items)

	assert.Len(t, e.Search("shared", 0, "en"), 1)
	assert.Len(t, e.Search("shared", -3, "en"), 1)
	assert.Len(t, e.Search("shared", 4, "en"), 4)
	assert.Len(t, e.Search("shared", 50, "en"), 10)

	small := newTestEngine(items, WithMaxK(3))
	assert.Len(t, small.Search("shared", 8, "en"), 3)
	assert.Equal(t, 3, small.ClampK(99))
}

func TestEngine_ResultsTieBreakByIndexOrder(t *testing.T) {
	e := newTestEngine(source.Memory{
		docItem("a", "tie break"),
		docItem("b", "other words"),
		docItem("c", "tie break"),
	})

	results := e.Search("tie", 4, "en")

	require.Len(t, results, 2)
	assert.Equal(t, "doc:a:0", results[0].ChunkID)
	assert.Equal(t, "doc:c:0", results[1].ChunkID)
}

func TestEngine_QueryLanguage(t *testing.T) {
	e := newTestEngine(sampleCorpus())

	tests := []struct {
		name   string
		query  string
		hint   string
		expect lang.Tag
	}{
		{"explicit hint wins", "the cat", "fr", lang.French},
		{"alias hint", "anything", "bahasa", lang.Indonesian},
		{"unsupported hint falls back", "le chat et la souris", "de", lang.Base},
		{"detected when confident", "Apa itu RAG dan bagaimana cara kerjanya?", "", lang.Indonesian},
		{"low confidence falls back", "xylophone", "", lang.Base},
		{"ideographic detection", "量子力学", "", lang.Chinese},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, e.QueryLanguage(tt.query, tt.hint))
		})
	}
}

func TestEngine_CJKSearch(t *testing.T) {
	e := newTestEngine(source.Memory{
		docItem("physics", "量子力学是描述微观物质的理论。"),
		docItem("english", "Quantum mechanics describes matter."),
	})

	results := e.Search("量子力学", 2, "zh")

	require.NotEmpty(t, results)
	assert.Equal(t, "doc:physics:0", results[0].ChunkID)
	assert.Equal(t, lang.Chinese, results[0].Lang)
}

func TestEngine_CacheReturnsCopies(t *testing.T) {
	e := newTestEngine(sampleCorpus(), WithCacheSize(8))

	first := e.Search("ranking", 2, "en")
	require.NotEmpty(t, first)
	first[0].Title = "mutated"

	second := e.Search("ranking", 2, "en")
	assert.NotEqual(t, "mutated", second[0].Title)
	assert.Equal(t, 1, e.Stats(0).CacheEntries)

	e.Reload()
	assert.Equal(t, 0, e.Stats(0).CacheEntries, "reload purges the cache")
}

func TestEngine_CacheDisabled(t *testing.T) {
	e := newTestEngine(sampleCorpus(), WithCacheSize(0))

	require.NotEmpty(t, e.Search("ranking", 2, "en"))
	assert.Equal(t, 0, e.Stats(0).CacheEntries)
}

func TestEngine_Stats(t *testing.T) {
	e := newTestEngine(sampleCorpus())
	e.Load()

	st := e.Stats(3)

	assert.Equal(t, "ready", st.State)
	assert.Equal(t, 2, st.Chunks)
	assert.Greater(t, st.Terms, 0)
	assert.Greater(t, st.AvgDL, 0.0)
	assert.Len(t, st.TopTerms, 3)
	assert.False(t, st.BuiltAt.IsZero())
}

func TestEngine_ConcurrentSearchDuringReload(t *testing.T) {
	e := newTestEngine(sampleCorpus())
	e.Load()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				results := e.Search("BM25 ranking", 3, "en")
				// Every snapshot contains the bm25 document
				if assert.NotEmpty(t, results) {
					assert.Equal(t, "doc:bm25:0", results[0].ChunkID)
				}
			}
		}()
	}

	for range 20 {
		e.Reload()
	}
	close(stop)
	wg.Wait()
}

func TestEngine_LogsSwap(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	e := NewEngine(index.NewLoader(nil, index.DefaultLoaderConfig(), logger), sampleCorpus(), WithLogger(logger))

	e.Load()
	e.Reload()

	assert.Contains(t, buf.String(), `"msg":"index_swapped"`)
	assert.Contains(t, buf.String(), `"previous_generation":1`)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "unknown", State(9).String())
}

func BenchmarkEngine_Search(b *testing.B) {
	items := make(source.Memory, 0, 500)
	for i := range 500 {
		items = append(items, docItem(fmt.Sprintf("doc%03d", i),
			fmt.Sprintf("Document %d discusses ranking, retrieval and chunk %d of the corpus.", i, i%17)))
	}
	e := newTestEngine(items, WithCacheSize(0))
	e.Load()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Search("ranking retrieval corpus", 4, "en")
	}
}
