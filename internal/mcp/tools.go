package mcp

import (
	"github.com/Aman-CERP/kbsearch/internal/index"
	"github.com/Aman-CERP/kbsearch/internal/search"
	"github.com/Aman-CERP/kbsearch/internal/telemetry"
)

// SearchInput defines the input schema for the search tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the question or keywords to look up in the knowledge base"`
	K        int    `json:"k,omitempty" jsonschema:"number of results, 1 to 10, default 4"`
	Language string `json:"language,omitempty" jsonschema:"query language code (en, zh, ja, fr, pt, es, id); detected when empty"`
}

// SearchOutput defines the output schema for the search tool.
type SearchOutput struct {
	Query    string               `json:"query"`
	Language string               `json:"language" jsonschema:"language used to tokenize the query"`
	Results  []SearchResultOutput `json:"results"`
}

// SearchResultOutput is one ranked chunk.
type SearchResultOutput struct {
	ChunkID string  `json:"chunk_id" jsonschema:"stable chunk identifier, readable via kb://chunks/{id}"`
	Title   string  `json:"title"`
	Source  string  `json:"source" jsonschema:"file the chunk came from"`
	Lang    string  `json:"lang,omitempty"`
	Score   float64 `json:"score" jsonschema:"BM25 score, higher is better"`
	Snippet string  `json:"snippet" jsonschema:"best matching sentence"`
	Text    string  `json:"text"`
}

// ReloadInput defines the input schema for the reload tool (no parameters).
type ReloadInput struct{}

// ReloadOutput reports the snapshot produced by a reload.
type ReloadOutput struct {
	Generation         uint64        `json:"generation"`
	PreviousGeneration uint64        `json:"previous_generation,omitempty"`
	Chunks             int           `json:"chunks"`
	Terms              int           `json:"terms"`
	Skipped            index.Skipped `json:"skipped"`
	DurationMS         int64         `json:"duration_ms"`
}

// IndexStatusInput defines the input schema for the index_status tool.
type IndexStatusInput struct {
	TopTerms int `json:"top_terms,omitempty" jsonschema:"number of most frequent terms to include"`
}

// IndexStatusOutput wraps the engine statistics with the configured sources
// and the queries answered so far.
type IndexStatusOutput struct {
	Stats   search.Stats       `json:"stats"`
	Sources SourcesInfo        `json:"sources"`
	Queries telemetry.Snapshot `json:"queries"`
}

// SourcesInfo names the directories the index is built from.
type SourcesInfo struct {
	KnowledgeBase string `json:"knowledge_base"`
	Packs         string `json:"packs"`
}

// DetectLanguageInput defines the input schema for the detect_language tool.
type DetectLanguageInput struct {
	Text string `json:"text" jsonschema:"text to classify"`
	Hint string `json:"hint,omitempty" jsonschema:"optional language code that overrides detection"`
}

// DetectLanguageOutput reports the detected and resolved language.
type DetectLanguageOutput struct {
	Detected   string  `json:"detected"`
	Confidence float64 `json:"confidence"`
	Resolved   string  `json:"resolved" jsonschema:"language a search with this text and hint would use"`
	Name       string  `json:"name"`
}
