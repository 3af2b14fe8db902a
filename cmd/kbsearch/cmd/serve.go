package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/kbsearch/internal/mcp"
	"github.com/Aman-CERP/kbsearch/internal/watcher"
)

var newWatcher = watcher.New

func newServeCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the
search, reload, index_status and detect_language tools.

Stdout carries the protocol stream; logs go to the log file only.
With --watch (or watch.enabled in config) the index is rebuilt when
documents or packs change.`,
		Example: `  kbsearch serve
  kbsearch serve --watch --root /srv/knowledge`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a, watch, cmd.Flags().Changed("watch"))
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the index when source files change")

	return cmd
}

func runServe(ctx context.Context, a *app, watch, watchSet bool) error {
	cfg, root, err := a.loadConfig()
	if err != nil {
		return err
	}
	if !watchSet {
		watch = cfg.Watch.Enabled
	}

	logger := a.log()
	engine := a.newEngine(cfg, root)
	engine.Load()

	srv, err := mcp.NewServer(engine, cfg, root, logger)
	if err != nil {
		return err
	}

	// Everything that can fail happens before the server takes stdin.
	var w *watcher.Watcher
	if watch {
		w, err = newWatcher(watcher.Options{Debounce: cfg.DebounceDuration()}, logger)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// The client closing stdin ends the session; stop the watcher with it.
		defer cancel()
		return srv.Serve(gctx, cfg.Server.Transport)
	})

	if w != nil {
		g.Go(func() error {
			err := w.Start(gctx, cfg.KnowledgeBaseDir(root), cfg.PacksDir(root))
			switch {
			case err == nil, errors.Is(err, context.Canceled):
				return nil
			case errors.Is(err, watcher.ErrNoDirectories):
				logger.Warn("watch_disabled", slog.String("reason", err.Error()))
				return nil
			default:
				return err
			}
		})
		g.Go(func() error {
			watcher.RunReloader(gctx, w.Events(), engine.Reload, logger)
			return nil
		})
	}

	return g.Wait()
}
