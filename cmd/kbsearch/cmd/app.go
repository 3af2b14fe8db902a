package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbsearch/internal/config"
	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/logging"
	"github.com/Aman-CERP/kbsearch/internal/output"
	"github.com/Aman-CERP/kbsearch/internal/search"
	"github.com/Aman-CERP/kbsearch/internal/source"
)

// app carries state shared by commands during one invocation.
type app struct {
	opts    *globalOptions
	logger  *slog.Logger
	level   slog.LevelVar
	cleanup func()
}

// setupLogging opens the JSON log file before the config is known, at the
// KBSEARCH_LOG_LEVEL level. loadConfig later applies server.log_level. A log
// file that cannot be opened degrades to discarding logs rather than failing
// the command.
func (a *app) setupLogging(cmd *cobra.Command) error {
	level := "info"
	if v := os.Getenv("KBSEARCH_LOG_LEVEL"); v != "" {
		level = v
	}
	// Stdout is reserved for command output and the MCP stream.
	cfg := logging.ServerConfig(level)
	if a.opts.debug {
		cfg = logging.DebugConfig()
	}
	cfg.FilePath = a.opts.logFile
	cfg.LevelVar = &a.level

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		cleanup = func() {}
	}
	a.logger = logger
	a.cleanup = cleanup
	slog.SetDefault(logger)

	logger.Debug("command_started",
		slog.String("command", cmd.CommandPath()),
		slog.String("log_file", cfg.FilePath))
	return nil
}

// applyLogLevel switches the logger to the configured level. --debug wins.
func (a *app) applyLogLevel(cfg *config.Config) {
	if a.opts.debug || cfg.Server.LogLevel == "" {
		return
	}
	a.level.Set(logging.ParseLevel(cfg.Server.LogLevel))
	a.log().Debug("log_level_applied", slog.String("level", cfg.Server.LogLevel))
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

// rootDir returns the absolute --root directory.
func (a *app) rootDir() (string, error) {
	root, err := filepath.Abs(a.opts.root)
	if err != nil {
		return "", fmt.Errorf("resolve root directory: %w", err)
	}
	return root, nil
}

// loadConfig loads --config if given, else the layered configuration for root.
func (a *app) loadConfig() (*config.Config, string, error) {
	root, err := a.rootDir()
	if err != nil {
		return nil, "", err
	}

	var cfg *config.Config
	if a.opts.configPath != "" {
		cfg, err = config.LoadFile(a.opts.configPath)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, "", err
	}
	a.applyLogLevel(cfg)
	return cfg, root, nil
}

// newEngine wires the loader, providers and engine for cfg.
func (a *app) newEngine(cfg *config.Config, root string) *search.Engine {
	loader := index.NewLoader(lang.NewResolver(), index.LoaderConfig{
		MaxChunkChars:   cfg.Index.MaxChunkChars,
		DetectThreshold: cfg.Index.DetectThreshold,
	}, a.log())

	provider := source.Chain(
		source.NewDirProvider(cfg.KnowledgeBaseDir(root)),
		source.NewPackProvider(cfg.PacksDir(root)),
	)

	return search.NewEngine(loader, provider,
		search.WithLogger(a.log()),
		search.WithMaxK(cfg.Search.MaxK),
		search.WithCacheSize(cfg.Search.CacheSize),
		search.WithDetectThreshold(cfg.Index.DetectThreshold),
	)
}

// writer returns a styled writer for stdout honoring --no-color.
func (a *app) writer(cmd *cobra.Command) *output.Writer {
	out := cmd.OutOrStdout()
	if a.opts.noColor {
		return output.NewWithColor(out, false)
	}
	return output.New(out)
}

// log returns the command logger, falling back to slog's default.
func (a *app) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}
