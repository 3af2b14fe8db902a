package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testRoot creates a project with two documents and one pack and isolates
// the user config directory.
func testRoot(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	kb := filepath.Join(root, "data", "knowledge_base")
	packs := filepath.Join(root, "data", "knowledge_packs", "processed")
	require.NoError(t, os.MkdirAll(kb, 0o755))
	require.NoError(t, os.MkdirAll(packs, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(kb, "bm25_ranking.md"),
		[]byte("BM25 is a ranking function used by search engines.\n\nIt scores documents by term frequency."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(kb, "chunking.txt"),
		[]byte("Documents are split into paragraphs before indexing."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(packs, "faq.jsonl"),
		[]byte(`{"title":"Mesin","lang":"id","text":"Apa itu pembelajaran mesin dan bagaimana cara kerjanya"}`+"\n"), 0o644))

	return root
}

// run executes the CLI against root and returns stdout.
func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	base := []string{"--root", root, "--log-file", filepath.Join(root, "kbsearch.log"), "--no-color"}
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return out.String(), err
}
