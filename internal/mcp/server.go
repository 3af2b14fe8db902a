package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/kbsearch/internal/config"
	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/lang"
	"github.com/Aman-CERP/kbsearch/internal/search"
	"github.com/Aman-CERP/kbsearch/internal/telemetry"
	"github.com/Aman-CERP/kbsearch/pkg/version"
)

// snippetRunes bounds the snippet attached to each search result.
const snippetRunes = 240

// Engine is the part of the search engine the server uses.
type Engine interface {
	Search(query string, k int, hint string) []search.Result
	Reload() *index.Index
	Snapshot() *index.Index
	Stats(top int) search.Stats
	QueryLanguage(query, hint string) lang.Tag
	Resolver() lang.Resolver
}

var _ Engine = (*search.Engine)(nil)

// Server bridges MCP clients with the knowledge base engine.
type Server struct {
	mcp    *mcp.Server
	engine Engine
	config *config.Config
	root    string
	logger  *slog.Logger
	metrics *telemetry.QueryMetrics
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var tools = []ToolInfo{
	{
		Name:        "search",
		Description: "Search the knowledge base. Returns the most relevant passages ranked by BM25. Works for English, Chinese, Japanese, French, Portuguese, Spanish and Indonesian; the query language is detected when not given.",
	},
	{
		Name:        "reload",
		Description: "Rebuild the knowledge base index from disk. Use after documents or knowledge packs change.",
	},
	{
		Name:        "index_status",
		Description: "Report whether the index is loaded, its size, and what the last load skipped.",
	},
	{
		Name:        "detect_language",
		Description: "Detect the language of a text and show which language a search would use for it.",
	},
}

// NewServer creates a server over engine. root resolves relative source
// directories for status reporting.
func NewServer(engine Engine, cfg *config.Config, root string, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine: engine,
		config: cfg,
		root:    root,
		logger:  logger,
		metrics: telemetry.NewQueryMetrics(telemetry.DefaultConfig()),
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "kbsearch",
		Version: version.Version,
	}, nil)

	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// ListTools returns the registered tools.
func (s *Server) ListTools() []ToolInfo {
	return append([]ToolInfo(nil), tools...)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[0].Name, Description: tools[0].Description}, s.searchHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[1].Name, Description: tools[1].Description}, s.reloadHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[2].Name, Description: tools[2].Description}, s.indexStatusHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[3].Name, Description: tools[3].Description}, s.detectLanguageHandler)
	s.logger.Debug("mcp_tools_registered", slog.Int("count", len(tools)))
}

func (s *Server) searchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	out, err := s.handleSearch(ctx, input)
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) handleSearch(ctx context.Context, input SearchInput) (SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return SearchOutput{}, NewInvalidParamsError("query parameter is required")
	}
	if err := ctx.Err(); err != nil {
		return SearchOutput{}, err
	}

	k := input.K
	if k == 0 {
		k = s.config.Search.DefaultK
	}

	start := time.Now()
	tag := s.engine.QueryLanguage(input.Query, input.Language)
	results := s.engine.Search(input.Query, k, input.Language)

	out := SearchOutput{
		Query:    input.Query,
		Language: string(tag),
		Results:  make([]SearchResultOutput, 0, len(results)),
	}
	for _, r := range results {
		out.Results = append(out.Results, SearchResultOutput{
			ChunkID: r.ChunkID,
			Title:   r.Title,
			Source:  r.Source,
			Lang:    string(r.Lang),
			Score:   r.Score,
			Snippet: search.Snippet(r, input.Query, snippetRunes),
			Text:    r.Text,
		})
	}

	latency := time.Since(start)
	s.metrics.Record(telemetry.QueryEvent{
		Query:   input.Query,
		Lang:    tag,
		Results: len(out.Results),
		Latency: latency,
	})
	s.logger.Info("mcp_search",
		slog.String("lang", out.Language),
		slog.Int("k", k),
		slog.Int("results", len(out.Results)),
		slog.Duration("latency", latency))
	return out, nil
}

func (s *Server) reloadHandler(ctx context.Context, _ *mcp.CallToolRequest, _ ReloadInput) (
	*mcp.CallToolResult,
	ReloadOutput,
	error,
) {
	if err := ctx.Err(); err != nil {
		return nil, ReloadOutput{}, MapError(err)
	}
	return nil, s.handleReload(), nil
}

func (s *Server) handleReload() ReloadOutput {
	prev := s.engine.Stats(0).Generation
	ix := s.engine.Reload()
	return ReloadOutput{
		Generation:         ix.Generation(),
		PreviousGeneration: prev,
		Chunks:             ix.Len(),
		Terms:              ix.TermCount(),
		Skipped:            ix.Skipped(),
		DurationMS:         ix.Duration().Milliseconds(),
	}
}

func (s *Server) indexStatusHandler(_ context.Context, _ *mcp.CallToolRequest, input IndexStatusInput) (
	*mcp.CallToolResult,
	IndexStatusOutput,
	error,
) {
	return nil, s.handleIndexStatus(input), nil
}

func (s *Server) handleIndexStatus(input IndexStatusInput) IndexStatusOutput {
	top := input.TopTerms
	if top < 0 {
		top = 0
	}
	return IndexStatusOutput{
		Stats: s.engine.Stats(top),
		Sources: SourcesInfo{
			KnowledgeBase: s.config.KnowledgeBaseDir(s.root),
			Packs:         s.config.PacksDir(s.root),
		},
		Queries: s.metrics.Snapshot(),
	}
}

// Metrics returns the query statistics collected since startup.
func (s *Server) Metrics() telemetry.Snapshot {
	return s.metrics.Snapshot()
}

func (s *Server) detectLanguageHandler(_ context.Context, _ *mcp.CallToolRequest, input DetectLanguageInput) (
	*mcp.CallToolResult,
	DetectLanguageOutput,
	error,
) {
	out, err := s.handleDetectLanguage(input)
	if err != nil {
		return nil, DetectLanguageOutput{}, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) handleDetectLanguage(input DetectLanguageInput) (DetectLanguageOutput, error) {
	if strings.TrimSpace(input.Text) == "" && strings.TrimSpace(input.Hint) == "" {
		return DetectLanguageOutput{}, NewInvalidParamsError("text parameter is required")
	}
	g := s.engine.Resolver().Detect(input.Text)
	resolved := s.engine.QueryLanguage(input.Text, input.Hint)
	return DetectLanguageOutput{
		Detected:   string(g.Tag),
		Confidence: g.Confidence,
		Resolved:   string(resolved),
		Name:       lang.Name(resolved),
	}, nil
}

// Serve runs the server on the given transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("mcp_server_starting", slog.String("transport", transport))

	switch transport {
	case "", "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("mcp_server_stopped")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}
