// Package config loads kbsearch configuration from YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
)

// Project config file names, in lookup order.
const (
	ProjectConfigYAML = ".kbsearch.yaml"
	ProjectConfigYML  = ".kbsearch.yml"
)

// Config represents the complete kbsearch configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Paths   PathsConfig  `yaml:"paths" json:"paths"`
	Index   IndexConfig  `yaml:"index" json:"index"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Watch   WatchConfig  `yaml:"watch" json:"watch"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// PathsConfig locates the knowledge sources. Relative paths are resolved
// against the directory the config was loaded for.
type PathsConfig struct {
	// KnowledgeBase holds *.md and *.txt documents.
	KnowledgeBase string `yaml:"knowledge_base" json:"knowledge_base"`

	// Packs holds *.jsonl and *.jsonl.gz record packs.
	Packs string `yaml:"packs" json:"packs"`
}

// IndexConfig configures corpus loading.
type IndexConfig struct {
	// MaxChunkChars bounds chunk length in characters (default: 850).
	MaxChunkChars int `yaml:"max_chunk_chars" json:"max_chunk_chars"`

	// DetectThreshold is the minimum confidence for accepting a detected
	// language (default: 0.6).
	DetectThreshold float64 `yaml:"detect_threshold" json:"detect_threshold"`
}

// SearchConfig configures query handling.
type SearchConfig struct {
	// DefaultK is the number of results when none is requested (default: 4).
	DefaultK int `yaml:"default_k" json:"default_k"`

	// MaxK caps requested result counts (default and upper bound: 10).
	MaxK int `yaml:"max_k" json:"max_k"`

	// CacheSize is the result cache capacity; 0 disables it (default: 256).
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// WatchConfig configures reload-on-change.
type WatchConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Debounce is how long to wait for changes to settle (default: "500ms").
	Debounce string `yaml:"debounce" json:"debounce"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// NewConfig returns a configuration with all defaults applied.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			KnowledgeBase: filepath.Join("data", "knowledge_base"),
			Packs:         filepath.Join("data", "knowledge_packs", "processed"),
		},
		Index: IndexConfig{
			MaxChunkChars:   850,
			DetectThreshold: 0.6,
		},
		Search: SearchConfig{
			DefaultK:  4,
			MaxK:      10,
			CacheSize: 256,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: "500ms",
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/kbsearch/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/kbsearch/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kbsearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "kbsearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "kbsearch", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for dir. Precedence, lowest first:
//  1. Hardcoded defaults
//  2. User config (~/.config/kbsearch/config.yaml)
//  3. Project config (.kbsearch.yaml in dir)
//  4. Environment variables (KBSEARCH_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadFromDir(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile loads defaults, then the file at path, then the environment.
// Unlike Load, a missing file is an error.
func LoadFile(path string) (*Config, error) {
	if !fileExists(path) {
		return nil, kberrors.New(kberrors.ErrCodeConfigNotFound, "config file not found: "+path, nil).
			WithSuggestion("Run 'kbsearch config init' to create one")
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromDir merges .kbsearch.yaml or .kbsearch.yml from dir, if present.
func (c *Config) loadFromDir(dir string) error {
	for _, name := range []string{ProjectConfigYAML, ProjectConfigYML} {
		if path := filepath.Join(dir, name); fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return kberrors.ConfigError("failed to read config file "+path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return kberrors.ConfigError("failed to parse config file "+path, err).
			WithDetail("path", path)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith copies non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Paths.KnowledgeBase != "" {
		c.Paths.KnowledgeBase = other.Paths.KnowledgeBase
	}
	if other.Paths.Packs != "" {
		c.Paths.Packs = other.Paths.Packs
	}

	if other.Index.MaxChunkChars != 0 {
		c.Index.MaxChunkChars = other.Index.MaxChunkChars
	}
	if other.Index.DetectThreshold != 0 {
		c.Index.DetectThreshold = other.Index.DetectThreshold
	}

	if other.Search.DefaultK != 0 {
		c.Search.DefaultK = other.Search.DefaultK
	}
	if other.Search.MaxK != 0 {
		c.Search.MaxK = other.Search.MaxK
	}
	if other.Search.CacheSize != 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}

	// A bool cannot express "unset", so a file can only turn watching on.
	if other.Watch.Enabled {
		c.Watch.Enabled = true
	}
	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies KBSEARCH_* environment variable overrides.
// Unparsable numbers are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KBSEARCH_KB_DIR"); v != "" {
		c.Paths.KnowledgeBase = v
	}
	if v := os.Getenv("KBSEARCH_PACKS_DIR"); v != "" {
		c.Paths.Packs = v
	}
	if v := os.Getenv("KBSEARCH_MAX_CHUNK_CHARS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Index.MaxChunkChars = n
		}
	}
	if v := os.Getenv("KBSEARCH_DEFAULT_K"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Search.DefaultK = n
		}
	}
	if v := os.Getenv("KBSEARCH_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Search.CacheSize = n
		}
	}
	if v := os.Getenv("KBSEARCH_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("KBSEARCH_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("KBSEARCH_WATCH"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Watch.Enabled = b
		}
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Index.MaxChunkChars <= 0 {
		return invalid("index.max_chunk_chars must be positive, got %d", c.Index.MaxChunkChars)
	}
	if c.Index.DetectThreshold <= 0 || c.Index.DetectThreshold > 1 {
		return invalid("index.detect_threshold must be in (0, 1], got %g", c.Index.DetectThreshold)
	}
	if c.Search.MaxK < 1 || c.Search.MaxK > 10 {
		return invalid("search.max_k must be between 1 and 10, got %d", c.Search.MaxK)
	}
	if c.Search.DefaultK < 1 || c.Search.DefaultK > c.Search.MaxK {
		return invalid("search.default_k must be between 1 and %d, got %d", c.Search.MaxK, c.Search.DefaultK)
	}
	if c.Search.CacheSize < 0 {
		return invalid("search.cache_size must be non-negative, got %d", c.Search.CacheSize)
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d < 0 {
		return invalid("watch.debounce must be a non-negative duration, got %q", c.Watch.Debounce)
	}
	if strings.ToLower(c.Server.Transport) != "stdio" {
		return invalid("server.transport must be 'stdio', got %s", c.Server.Transport)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return invalid("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return kberrors.ConfigError(fmt.Sprintf(format, args...), nil)
}

// DebounceDuration returns the parsed watch debounce, or 500ms if invalid.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

// KnowledgeBaseDir resolves the document directory against root.
func (c *Config) KnowledgeBaseDir(root string) string {
	return resolve(root, c.Paths.KnowledgeBase)
}

// PacksDir resolves the record pack directory against root.
func (c *Config) PacksDir(root string) string {
	return resolve(root, c.Paths.Packs)
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
