package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	kberrors "github.com/Aman-CERP/kbsearch/internal/errors"
	"github.com/Aman-CERP/kbsearch/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	k        int
	language string
	format   string // "text", "json"
}

// searchResponse is the JSON shape of search output.
type searchResponse struct {
	Query    string          `json:"query"`
	Language string          `json:"language"`
	K        int             `json:"k"`
	Results  []search.Result `json:"results"`
}

func newSearchCmd(a *app) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Search the knowledge base with BM25.

The query language is detected unless --lang is given. Unsupported
language codes fall back to English.

Examples:
  kbsearch search "what is BM25"
  kbsearch search "量子力学" -k 2
  kbsearch search "cómo funciona la búsqueda" --lang es --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, a, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.k, "k", "k", 0, "Number of results, 1-10 (default from config)")
	cmd.Flags().StringVarP(&opts.language, "lang", "l", "", "Query language: en, zh, ja, fr, pt, es, id (default: detect)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, a *app, query string, opts searchOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return kberrors.ValidationError(fmt.Sprintf("invalid format %q", opts.format), nil).
			WithSuggestion("Use --format text or --format json")
	}
	if strings.TrimSpace(query) == "" {
		return kberrors.New(kberrors.ErrCodeQueryEmpty, "query is empty", nil)
	}

	cfg, root, err := a.loadConfig()
	if err != nil {
		return err
	}

	k := opts.k
	if k == 0 {
		k = cfg.Search.DefaultK
	}

	start := time.Now()
	engine := a.newEngine(cfg, root)
	results := engine.Search(query, k, opts.language)
	tag := engine.QueryLanguage(query, opts.language)

	a.log().Info("search_complete",
		slog.String("lang", string(tag)),
		slog.Int("k", engine.ClampK(k)),
		slog.Int("results", len(results)),
		slog.Duration("elapsed", time.Since(start)))

	out := a.writer(cmd)
	if opts.format == "json" {
		return out.JSON(searchResponse{
			Query:    query,
			Language: string(tag),
			K:        engine.ClampK(k),
			Results:  results,
		})
	}

	out.Results(query, results)
	return nil
}
