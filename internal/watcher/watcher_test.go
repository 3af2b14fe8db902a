package watcher

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/source"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "MODIFY", OpModify.String())
	assert.Equal(t, "DELETE", OpDelete.String())
	assert.Equal(t, "RENAME", OpRename.String())
	assert.Equal(t, "UNKNOWN", Operation(99).String())
}

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		path   string
		expect bool
	}{
		{"kb/bm25.md", true},
		{"kb/NOTES.TXT", true},
		{"packs/faq.jsonl", true},
		{"packs/faq.jsonl.gz", true},
		{"packs/faq.json", false},
		{"kb/.bm25.md.swp", false},
		{"kb/.hidden.md", false},
		{"kb/bm25.md~", false},
		{"kb/image.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expect, IsSourceFile(tt.path))
		})
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{}.WithDefaults()
	assert.Equal(t, DefaultOptions(), o)

	o = Options{Debounce: time.Second}.WithDefaults()
	assert.Equal(t, time.Second, o.Debounce)
	assert.Equal(t, 16, o.EventBufferSize)
}

func TestWatcher_NoDirectories(t *testing.T) {
	w, err := New(Options{}, quietLogger())
	require.NoError(t, err)

	err = w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"), "")

	assert.ErrorIs(t, err, ErrNoDirectories)
	assert.NoError(t, w.Stop(), "stop after failed start is safe")
}

func TestWatcher_EmitsDebouncedBatch(t *testing.T) {
	// Given: a watcher on a knowledge base directory
	dir := t.TempDir()
	w, err := New(Options{Debounce: 50 * time.Millisecond}, quietLogger())
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx, dir, filepath.Join(dir, "absent")) }()
	require.Eventually(t, func() bool { return len(w.Dirs()) == 1 }, 2*time.Second, 10*time.Millisecond)

	// When: a source file and an unrelated file are written
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bm25.md"), []byte("BM25 ranks."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{0x89}, 0o644))

	// Then: one batch arrives holding only the source file
	select {
	case batch := <-w.Events():
		require.Len(t, batch, 1)
		assert.Equal(t, "bm25.md", filepath.Base(batch[0].Path))
	case <-time.After(3 * time.Second):
		t.Fatal("no batch received")
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w, err := New(Options{}, quietLogger())
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestRunReloader_ReloadsPerBatch(t *testing.T) {
	// Given: a loader over an in-memory corpus and two queued batches
	loader := index.NewLoader(nil, index.DefaultLoaderConfig(), quietLogger())
	corpus := source.Memory{{
		Kind: source.KindDocument, SourceID: "bm25.md", Stem: "bm25",
		Title: "Bm25", Text: "BM25 is a ranking function.",
	}}

	events := make(chan []FileEvent, 2)
	events <- []FileEvent{{Path: "/kb/bm25.md", Operation: OpModify}}
	events <- []FileEvent{{Path: "/kb/new.md", Operation: OpCreate}}
	close(events)

	var seen []uint64
	reload := func() *index.Index {
		ix := loader.Load(corpus)
		seen = append(seen, ix.Generation())
		return ix
	}

	// When: the reloader drains the channel
	n := RunReloader(context.Background(), events, reload, quietLogger())

	// Then: one rebuild per batch with increasing generations
	assert.Equal(t, 2, n)
	require.Len(t, seen, 2)
	assert.Less(t, seen[0], seen[1])
}

func TestRunReloader_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := RunReloader(ctx, make(chan []FileEvent), func() *index.Index { return nil }, nil)

	assert.Zero(t, n)
}
