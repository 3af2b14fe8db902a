package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/watcher"
)

// startWatching runs a watcher over c feeding reload until the test ends.
func startWatching(t *testing.T, c corpus, reload watcher.ReloadFunc) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := watcher.New(watcher.Options{Debounce: 50 * time.Millisecond}, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_ = w.Start(gctx, c.kb, c.packs)
		return nil
	})
	g.Go(func() error {
		watcher.RunReloader(gctx, w.Events(), reload, logger)
		return nil
	})

	require.Eventually(t, func() bool { return len(w.Dirs()) == 2 }, 2*time.Second, 10*time.Millisecond)

	t.Cleanup(func() {
		cancel()
		_ = g.Wait()
	})
}

func TestWatcher_NewDocumentBecomesSearchable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Given: a served index that knows nothing about sourdough
	c := newCorpus(t)
	c.writeDoc(t, "bm25.md", "BM25 is a lexical ranking function.")
	e := c.engine()
	e.Load()
	startWatching(t, c, e.Reload)
	require.Empty(t, e.Search("sourdough", 4, ""))

	// When: a document about it is written
	c.writeDoc(t, "bread.md", "Sourdough bread rises with a wild yeast starter.")

	// Then: a reload makes it searchable
	assert.Eventually(t, func() bool {
		results := e.Search("sourdough", 4, "")
		return len(results) == 1 && results[0].ChunkID == "doc:bread:0"
	}, 5*time.Second, 25*time.Millisecond)
}

func TestWatcher_DeletedPackDisappears(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	c := newCorpus(t)
	c.writePack(t, "faq.jsonl", `{"title":"Mesin","lang":"id","text":"Pembelajaran mesin adalah cabang kecerdasan buatan."}`)
	e := c.engine()
	e.Load()
	startWatching(t, c, e.Reload)
	require.NotEmpty(t, e.Search("kecerdasan buatan", 4, "id"))

	require.NoError(t, os.Remove(filepath.Join(c.packs, "faq.jsonl")))

	assert.Eventually(t, func() bool {
		return len(e.Search("kecerdasan buatan", 4, "id")) == 0
	}, 5*time.Second, 25*time.Millisecond)
}

func TestWatcher_IgnoredFilesDoNotReload(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	c := newCorpus(t)
	c.writeDoc(t, "bm25.md", "BM25 is a lexical ranking function.")
	e := c.engine()
	e.Load()
	gen := e.Snapshot().Generation()

	reloads := make(chan struct{}, 8)
	startWatching(t, c, func() *index.Index {
		reloads <- struct{}{}
		return e.Reload()
	})

	// Editor backups and unrelated extensions are not sources.
	c.writeDoc(t, "bm25.md~", "backup")
	c.writeDoc(t, "notes.pdf", "binary")
	c.writeDoc(t, ".hidden.md", "hidden")

	select {
	case <-reloads:
		t.Fatal("reload triggered by a non-source file")
	case <-time.After(300 * time.Millisecond):
	}
	assert.Equal(t, gen, e.Snapshot().Generation())
}
