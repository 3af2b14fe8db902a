package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme      = "kb://"
	statsURI       = uriScheme + "stats"
	chunkURIPrefix = uriScheme + "chunks/"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         statsURI,
		Name:        "stats",
		Description: "Index statistics and the twenty most frequent terms",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: chunkURIPrefix + "{id}",
		Name:        "chunk",
		Description: "Full text of one knowledge base chunk",
		MIMEType:    "text/markdown",
	}, s.handleChunkResource)
}

func (s *Server) handleStatsResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.handleIndexStatus(IndexStatusInput{TopTerms: 20}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleChunkResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	text, err := s.readChunk(req.Params.URI)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     text,
		}},
	}, nil
}

// readChunk renders the chunk named by uri as markdown.
func (s *Server) readChunk(uri string) (string, error) {
	id, ok := strings.CutPrefix(uri, chunkURIPrefix)
	if !ok || id == "" {
		return "", NewInvalidParamsError(fmt.Sprintf("invalid chunk URI: %s", uri))
	}

	c, found := s.engine.Snapshot().Lookup(id)
	if !found {
		return "", NewChunkNotFoundError(id)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", c.Title)
	fmt.Fprintf(&sb, "- id: `%s`\n- source: %s\n", c.ID, c.Source)
	if c.Lang != "" {
		fmt.Fprintf(&sb, "- language: %s\n", c.Lang)
	}
	sb.WriteString("\n")
	sb.WriteString(c.Text)
	sb.WriteString("\n")
	return sb.String(), nil
}
