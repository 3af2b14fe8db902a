package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/kbsearch/internal/config"
	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
	"github.com/Aman-CERP/kbsearch/internal/watcher"
)

func TestServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd(&app{opts: &globalOptions{}})

	f := cmd.Flags().Lookup("watch")
	require.NotNil(t, f)
	assert.Equal(t, "false", f.DefValue)
}

func TestServeCmd_InvalidConfigWritesNothingToStdout(t *testing.T) {
	// Given: a project config selecting an unsupported transport
	root := testRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, config.ProjectConfigYAML),
		[]byte("server:\n  transport: http\n"), 0o644))

	// When: starting the server
	out, err := run(t, root, "serve")

	// Then: it fails with a config error and stdout stays clean
	require.Error(t, err)
	assert.Equal(t, kberrors.ErrCodeConfigInvalid, kberrors.GetCode(err))
	assert.Empty(t, out)
}

func TestServeCmd_WatcherFailureStopsBeforeServing(t *testing.T) {
	// Given: a watcher that cannot be created
	errInotify := errors.New("too many open files")
	orig := newWatcher
	newWatcher = func(watcher.Options, *slog.Logger) (*watcher.Watcher, error) {
		return nil, errInotify
	}
	t.Cleanup(func() { newWatcher = orig })
	root := testRoot(t)

	// When: serving with --watch
	out, err := run(t, root, "serve", "--watch")

	// Then: the error is returned and the MCP server never started
	require.ErrorIs(t, err, errInotify)
	assert.Empty(t, out)
	data, readErr := os.ReadFile(filepath.Join(root, "kbsearch.log"))
	require.NoError(t, readErr)
	assert.NotContains(t, string(data), "mcp_server_starting")
}
