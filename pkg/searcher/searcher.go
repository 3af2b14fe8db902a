package searcher

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/search"
	"github.com/Aman-CERP/kbsearch/internal/source"
	"github.com/Aman-CERP/kbsearch/internal/tokenize"
)

// ErrNoSources is returned by New when no directory or document was configured.
var ErrNoSources = errors.New("at least one knowledge source is required")

// Searcher performs search operations and returns ranked results.
//
// Implementations must be safe for concurrent use.
type Searcher interface {
	// Search returns up to limit results for query, ranked best first.
	// It returns an empty slice, not nil, when nothing matches.
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Result is a single search hit.
type Result struct {
	// ID is the stable chunk identifier, e.g. "doc:bm25:0".
	ID     string
	Title  string
	Source string
	Lang   string
	Text   string

	// Score is the raw BM25 score. Higher is better; it is always positive.
	Score float64

	// MatchedTerms are the query tokens present in the chunk, sorted.
	MatchedTerms []string
}

// Document is an in-memory knowledge source.
type Document struct {
	// Name is used to derive the chunk ID stem and default title.
	Name  string
	Title string
	Lang  string
	Text  string
}

// Stats summarises the loaded index.
type Stats = search.Stats

type options struct {
	kbDir         string
	packsDir      string
	docs          []Document
	maxChunkChars int
	cacheSize     int
	maxK          int
	logger        *slog.Logger
}

// Option configures a KnowledgeBase.
type Option func(*options)

// WithKnowledgeBaseDir adds a directory of .md and .txt documents.
func WithKnowledgeBaseDir(dir string) Option {
	return func(o *options) { o.kbDir = dir }
}

// WithPacksDir adds a directory of .jsonl and .jsonl.gz record packs.
func WithPacksDir(dir string) Option {
	return func(o *options) { o.packsDir = dir }
}

// WithDocuments adds in-memory documents, loaded after any directories.
func WithDocuments(docs ...Document) Option {
	return func(o *options) { o.docs = append(o.docs, docs...) }
}

// WithMaxChunkChars bounds chunk size in characters. Default: 850
func WithMaxChunkChars(n int) Option {
	return func(o *options) { o.maxChunkChars = n }
}

// WithCacheSize sets the query result cache size; 0 disables caching.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithMaxK caps the number of results per query. Default: 10
func WithMaxK(k int) Option {
	return func(o *options) { o.maxK = k }
}

// WithLogger sets the logger for load and search events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// KnowledgeBase is a loaded, searchable set of knowledge sources.
type KnowledgeBase struct {
	engine *search.Engine
}

var _ Searcher = (*KnowledgeBase)(nil)

// New configures a knowledge base. The index is built lazily on the first
// Search, or eagerly with Load.
func New(opts ...Option) (*KnowledgeBase, error) {
	o := options{
		cacheSize: search.DefaultCacheSize,
		maxK:      search.MaxK,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.kbDir == "" && o.packsDir == "" && len(o.docs) == 0 {
		return nil, ErrNoSources
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	cfg := index.DefaultLoaderConfig()
	if o.maxChunkChars > 0 {
		cfg.MaxChunkChars = o.maxChunkChars
	}
	loader := index.NewLoader(nil, cfg, o.logger)

	var providers []source.Provider
	if o.kbDir != "" {
		providers = append(providers, source.NewDirProvider(o.kbDir))
	}
	if o.packsDir != "" {
		providers = append(providers, source.NewPackProvider(o.packsDir))
	}
	if len(o.docs) > 0 {
		providers = append(providers, memoryProvider(o.docs))
	}

	engine := search.NewEngine(loader, source.Chain(providers...),
		search.WithLogger(o.logger),
		search.WithCacheSize(o.cacheSize),
		search.WithMaxK(o.maxK),
	)
	return &KnowledgeBase{engine: engine}, nil
}

func memoryProvider(docs []Document) source.Memory {
	items := make(source.Memory, 0, len(docs))
	for _, d := range docs {
		stem := source.Stem(d.Name)
		title := d.Title
		if title == "" {
			title = source.TitleFromStem(stem)
		}
		items = append(items, source.Item{
			Kind:     source.KindDocument,
			SourceID: d.Name,
			Stem:     stem,
			Title:    title,
			Lang:     d.Lang,
			Text:     d.Text,
		})
	}
	return items
}

// Load builds the index if it has not been built yet.
func (kb *KnowledgeBase) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kb.engine.Load()
	return nil
}

// Reload rebuilds the index from the configured sources.
func (kb *KnowledgeBase) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kb.engine.Reload()
	return nil
}

// Search ranks chunks for query with automatic language detection.
func (kb *KnowledgeBase) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	return kb.SearchLang(ctx, query, limit, "")
}

// SearchLang ranks chunks for query tokenized as language. An empty language
// detects it; an unsupported one falls back to English.
func (kb *KnowledgeBase) SearchLang(ctx context.Context, query string, limit int, language string) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits, ix := kb.engine.SearchWithSnapshot(query, limit, language)
	queryTerms := tokenize.TermFrequency(tokenize.Tokenize(query, kb.engine.QueryLanguage(query, language)))

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			ID:     h.ChunkID,
			Title:  h.Title,
			Source: h.Source,
			Lang:   string(h.Lang),
			Text:   h.Text,
			Score:  h.Score,
		}
		if c, ok := ix.Lookup(h.ChunkID); ok {
			results[i].MatchedTerms = matchedTerms(queryTerms, c.TF)
		}
	}
	return results, nil
}

func matchedTerms(query map[string]int, tf map[string]int) []string {
	var out []string
	for t := range query {
		if tf[t] > 0 {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// Stats describes the index without triggering a load.
func (kb *KnowledgeBase) Stats(topTerms int) Stats {
	return kb.engine.Stats(topTerms)
}

// DetectLanguage returns the language a search for text would use.
func DetectLanguage(text string) string {
	return string(lang.Resolve(lang.NewResolver(), "", strings.TrimSpace(text), lang.DefaultDetectThreshold))
}

// SupportedLanguages lists the language codes the tokenizer understands.
func SupportedLanguages() []string {
	tags := lang.Tags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
