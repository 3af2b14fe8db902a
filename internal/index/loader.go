package index

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/kbsearch/internal/chunk"
	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/source"
	"github.com/Aman-CERP/kbsearch/internal/tokenize"
)

// LoaderConfig configures corpus loading.
type LoaderConfig struct {
	// MaxChunkChars bounds chunk length in characters (default: 850).
	MaxChunkChars int

	// DetectThreshold is the minimum detection confidence for documents
	// without a language tag (default: 0.6).
	DetectThreshold float64
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		MaxChunkChars:   chunk.DefaultMaxChars,
		DetectThreshold: lang.DefaultDetectThreshold,
	}
}

// Loader turns providers into Index snapshots. Load is safe to call from
// multiple goroutines; each call produces an independent snapshot.
type Loader struct {
	resolver lang.Resolver
	config   LoaderConfig
	logger   *slog.Logger

	generation atomic.Uint64
}

// NewLoader creates a loader. A nil resolver uses the heuristic resolver and
// a nil logger uses slog.Default().
func NewLoader(resolver lang.Resolver, config LoaderConfig, logger *slog.Logger) *Loader {
	if resolver == nil {
		resolver = lang.NewResolver()
	}
	if config.MaxChunkChars <= 0 {
		config.MaxChunkChars = chunk.DefaultMaxChars
	}
	if config.DetectThreshold <= 0 {
		config.DetectThreshold = lang.DefaultDetectThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{resolver: resolver, config: config, logger: logger}
}

// Resolver returns the language resolver the loader uses.
func (l *Loader) Resolver() lang.Resolver { return l.resolver }

// Config returns the effective loader configuration.
func (l *Loader) Config() LoaderConfig { return l.config }

// Load consumes p and returns a new snapshot. It never fails: unreadable
// sources and corrupt records are logged and skipped.
func (l *Loader) Load(p source.Provider) *Index {
	started := time.Now()
	b := newBuilder()
	stems := source.NewStems()

	if p != nil {
		for item, err := range p.Items() {
			if err != nil {
				b.skipped.Sources++
				l.logger.Warn("source_skipped",
					append([]any{slog.String("source", item.SourceID)}, kberrors.FormatForLog(err)...)...)
				continue
			}
			l.addItem(b, stems.Assign(item))
		}
	}

	ix := b.finish(l.generation.Add(1), started)
	l.logger.Info("kb_load_complete",
		slog.Uint64("generation", ix.generation),
		slog.Int("chunks", ix.Len()),
		slog.Int("terms", ix.TermCount()),
		slog.Float64("avgdl", ix.avgdl),
		slog.Int("skipped_sources", ix.skipped.Sources),
		slog.Int("skipped_chunks", ix.skipped.EmptyChunks),
		slog.Duration("duration", ix.duration))
	return ix
}

func (l *Loader) addItem(b *builder, item source.Item) {
	tag := l.itemLanguage(item)
	for i, text := range chunk.Split(item.Text, l.config.MaxChunkChars) {
		tokens := tokenize.Tokenize(text, tag)
		if len(tokens) == 0 {
			b.skipped.EmptyChunks++
			continue
		}
		b.add(Chunk{
			ID:     item.ChunkID(i),
			Title:  item.Title,
			Source: item.SourceID,
			Kind:   item.Kind,
			Lang:   tag,
			Text:   text,
			Tokens: tokens,
			TF:     tokenize.TermFrequency(tokens),
		})
	}
}

// itemLanguage resolves the tag for an item. Documents without a usable tag
// go through detection; records trust their own tag or fall back to Base.
func (l *Loader) itemLanguage(item source.Item) lang.Tag {
	if t, ok := l.resolver.Normalize(item.Lang); ok {
		return t
	}
	if item.Lang != "" {
		l.logger.Debug("language_fallback",
			slog.String("source", item.SourceID),
			slog.String("hint", item.Lang),
			slog.String("error_code", kberrors.ErrCodeUnsupportedLanguage))
	}
	if item.Kind == source.KindRecord {
		return lang.Base
	}
	return lang.Resolve(l.resolver, "", item.Text, l.config.DetectThreshold)
}
