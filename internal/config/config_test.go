package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
)

// isolate points the user config at an empty temp dir and clears KBSEARCH_* vars.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"KBSEARCH_KB_DIR", "KBSEARCH_PACKS_DIR", "KBSEARCH_MAX_CHUNK_CHARS",
		"KBSEARCH_DEFAULT_K", "KBSEARCH_CACHE_SIZE", "KBSEARCH_LOG_LEVEL",
		"KBSEARCH_TRANSPORT", "KBSEARCH_WATCH",
	} {
		t.Setenv(k, "")
	}
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, filepath.Join("data", "knowledge_base"), cfg.Paths.KnowledgeBase)
	assert.Equal(t, filepath.Join("data", "knowledge_packs", "processed"), cfg.Paths.Packs)
	assert.Equal(t, 850, cfg.Index.MaxChunkChars)
	assert.Equal(t, 0.6, cfg.Index.DetectThreshold)
	assert.Equal(t, 4, cfg.Search.DefaultK)
	assert.Equal(t, 10, cfg.Search.MaxK)
	assert.Equal(t, 256, cfg.Search.CacheSize)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDuration())
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	// Given: a user config and a project config that disagree
	isolate(t)
	userPath := GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0o755))
	require.NoError(t, os.WriteFile(userPath, []byte(`
search:
  default_k: 6
  cache_size: 32
server:
  log_level: debug
`), 0o644))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigYAML), []byte(`
paths:
  knowledge_base: docs
search:
  default_k: 3
watch:
  enabled: true
  debounce: 2s
`), 0o644))

	// When: loading
	cfg, err := Load(dir)

	// Then: project wins where set, user fills the rest
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Search.DefaultK)
	assert.Equal(t, 32, cfg.Search.CacheSize)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "docs", cfg.Paths.KnowledgeBase)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 2*time.Second, cfg.DebounceDuration())
	assert.Equal(t, filepath.Join(dir, "docs"), cfg.KnowledgeBaseDir(dir))
}

func TestLoad_YMLFallback(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigYML), []byte("index:\n  max_chunk_chars: 400\n"), 0o644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Index.MaxChunkChars)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigYAML), []byte("search:\n  default_k: 3\n"), 0o644))

	t.Setenv("KBSEARCH_DEFAULT_K", "7")
	t.Setenv("KBSEARCH_KB_DIR", "/srv/kb")
	t.Setenv("KBSEARCH_PACKS_DIR", "/srv/packs")
	t.Setenv("KBSEARCH_MAX_CHUNK_CHARS", "500")
	t.Setenv("KBSEARCH_CACHE_SIZE", "0")
	t.Setenv("KBSEARCH_LOG_LEVEL", "warn")
	t.Setenv("KBSEARCH_WATCH", "true")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.DefaultK)
	assert.Equal(t, "/srv/kb", cfg.KnowledgeBaseDir(dir), "absolute paths are kept")
	assert.Equal(t, "/srv/packs", cfg.PacksDir(dir))
	assert.Equal(t, 500, cfg.Index.MaxChunkChars)
	assert.Equal(t, 0, cfg.Search.CacheSize)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.True(t, cfg.Watch.Enabled)
}

func TestLoad_InvalidEnvNumberIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("KBSEARCH_DEFAULT_K", "many")
	t.Setenv("KBSEARCH_WATCH", "sometimes")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Search.DefaultK)
	assert.False(t, cfg.Watch.Enabled)
}

func TestLoad_MalformedYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigYAML), []byte("search: [unclosed"), 0o644))

	_, err := Load(dir)

	require.Error(t, err)
	assert.Equal(t, kberrors.ErrCodeConfigInvalid, kberrors.GetCode(err))
}

func TestLoad_ValidationFailure(t *testing.T) {
	isolate(t)
	t.Setenv("KBSEARCH_DEFAULT_K", "11")

	_, err := Load(t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "search.default_k")
}

func TestLoadFile(t *testing.T) {
	isolate(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, kberrors.ErrCodeConfigNotFound, kberrors.GetCode(err))

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  max_k: 5\n  default_k: 5\n"), 0o644))
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.MaxK)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero chunk size", func(c *Config) { c.Index.MaxChunkChars = 0 }, "max_chunk_chars"},
		{"threshold above one", func(c *Config) { c.Index.DetectThreshold = 1.5 }, "detect_threshold"},
		{"max k above ten", func(c *Config) { c.Search.MaxK = 11 }, "max_k"},
		{"default k above max", func(c *Config) { c.Search.MaxK = 3; c.Search.DefaultK = 4 }, "default_k"},
		{"negative cache", func(c *Config) { c.Search.CacheSize = -1 }, "cache_size"},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }, "debounce"},
		{"bad transport", func(c *Config) { c.Server.Transport = "sse" }, "transport"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "trace" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, kberrors.CategoryConfig, kberrors.GetCategory(err))
		})
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Search.DefaultK = 2
	cfg.Watch.Enabled = true

	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ProjectConfigYAML)))
	loaded, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetUserConfigPath_XDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	assert.Equal(t, filepath.Join(xdg, "kbsearch", "config.yaml"), GetUserConfigPath())
	assert.False(t, UserConfigExists())
}
