package tui

import (
	"bytes"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/output"
	"github.com/Aman-CERP/kbsearch/internal/search"
	"github.com/Aman-CERP/kbsearch/internal/source"
)

func newEngine() *search.Engine {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	loader := index.NewLoader(nil, index.DefaultLoaderConfig(), logger)
	corpus := source.Memory{
		{
			Kind: source.KindDocument, SourceID: "bm25.md", Stem: "bm25", Title: "Bm25",
			Text: "BM25 is a ranking function. It is used by search engines.",
		},
		{
			Kind: source.KindDocument, SourceID: "chunking.md", Stem: "chunking", Title: "Chunking",
			Text: "Documents are split into paragraphs. Ranking happens per chunk.",
		},
	}
	return search.NewEngine(loader, corpus, search.WithLogger(logger))
}

func typeQuery(t *testing.T, m tea.Model, q string) tea.Model {
	t.Helper()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(q)})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func sized(m Model) tea.Model {
	out, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return out
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := New(newEngine(), 4, output.NoColorStyles())
	assert.Equal(t, "Loading...", m.View())
}

func TestModel_LoadCommandReportsIndex(t *testing.T) {
	m := New(newEngine(), 4, output.NoColorStyles())

	msg := m.loadCmd()()
	loaded, ok := msg.(loadedMsg)
	require.True(t, ok)
	assert.Equal(t, 2, loaded.chunks)

	next, _ := sized(m).Update(loaded)
	got := next.(Model)
	assert.False(t, got.loading)
	assert.Contains(t, got.status, "Loaded 2 chunks")
}

func TestModel_EnterRunsSearch(t *testing.T) {
	// Given: a sized model
	m := sized(New(newEngine(), 4, output.NoColorStyles()))

	// When: typing a query and pressing enter
	m = typeQuery(t, m, "ranking function")

	// Then: results are shown with the top hit first
	got := m.(Model)
	require.NotEmpty(t, got.results)
	assert.Equal(t, "doc:bm25:0", got.results[0].ChunkID)
	assert.Equal(t, "ranking function", got.lastQuery)
	assert.Contains(t, got.View(), "Bm25")
	assert.Contains(t, got.status, "[en]")
}

func TestModel_ArrowsCycleResults(t *testing.T) {
	m := typeQuery(t, sized(New(newEngine(), 4, output.NoColorStyles())), "ranking")
	require.Len(t, m.(Model).results, 2)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.(Model).cursor)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.(Model).cursor, "wraps around")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.(Model).cursor)
}

func TestModel_EmptyQueryIgnored(t *testing.T) {
	m := sized(New(newEngine(), 4, output.NoColorStyles()))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, m.(Model).results)
	assert.Empty(t, m.(Model).lastQuery)
}

func TestModel_NoResults(t *testing.T) {
	m := typeQuery(t, sized(New(newEngine(), 4, output.NoColorStyles())), "zebra")

	got := m.(Model)
	assert.Empty(t, got.results)
	assert.Contains(t, got.status, "No results")
}

func TestModel_LanguageCycle(t *testing.T) {
	m := sized(New(newEngine(), 4, output.NoColorStyles()))
	assert.Equal(t, "auto", m.(Model).hintLabel())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.NotEqual(t, "auto", m.(Model).hintLabel())

	for i := 1; i < len(m.(Model).hints); i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	}
	assert.Equal(t, "auto", m.(Model).hintLabel(), "cycles back to detection")
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := New(newEngine(), 4, output.NoColorStyles())
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}
