package model

import (
	"fmt"
	"time"
)

// SearchStrategy selects how context is combined when answering a question
type SearchStrategy string

const (
	StrategyBasic     SearchStrategy = "basic"     // Chunk-level context only
	StrategyEnhanced  SearchStrategy = "enhanced"  // Chunks plus logical summaries
	StrategyParagraph SearchStrategy = "paragraph" // Chunks plus paragraph summaries
)

// ParseSearchStrategy validates a strategy name, defaulting to enhanced
func ParseSearchStrategy(s string) (SearchStrategy, error) {
	switch s {
	case "":
		return StrategyEnhanced, nil
	case string(StrategyBasic), string(StrategyEnhanced), string(StrategyParagraph):
		return SearchStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown search strategy %q", s)
	}
}

// SearchRequest describes a filtered multi-collection search
type SearchRequest struct {
	Query            string   `json:"query"`
	TopK             int      `json:"top_k"`
	Collections      []string `json:"collections,omitempty"`       // Restrict to specific collections
	Documents        []string `json:"documents,omitempty"`         // Allow-list of document filenames
	ExcludeDocuments []string `json:"exclude_documents,omitempty"` // Deny-list of document filenames
	Threshold        float64  `json:"threshold,omitempty"`         // Minimum similarity score
}

// SearchResult is a single scored hit from one collection
type SearchResult struct {
	Content    string   `json:"content"`
	Score      float64  `json:"score"`
	Document   string   `json:"document"`
	ChunkID    string   `json:"chunk_id"`
	Collection string   `json:"collection"`
	Metadata   Metadata `json:"metadata"`
}

// SearchResponse is the merged, scored result set of a search.
// Responses are kept in the engine's search cache under SearchID so a later
// ask call can reuse the same context without querying the store again.
type SearchResponse struct {
	SearchID            string         `json:"search_id"`
	Query               string         `json:"query"`
	Results             []SearchResult `json:"results"`
	TotalResults        int            `json:"total_results"`
	UniqueDocuments     []string       `json:"unique_documents"`
	ChunkIDs            []string       `json:"chunk_ids"`
	ProcessingTime      time.Duration  `json:"processing_time"`
	CollectionsSearched []string       `json:"collections_searched"`
}

// AskRequest describes a question with context selection fields.
// Context is gathered from the first of: a cached SearchID, explicit
// ChunkIDs, or a fresh filtered search.
type AskRequest struct {
	Question            string         `json:"question"`
	TopK                int            `json:"top_k"`
	Documents           []string       `json:"documents,omitempty"`
	ExcludeDocuments    []string       `json:"exclude_documents,omitempty"`
	ChunkIDs            []string       `json:"chunk_ids,omitempty"`
	SearchID            string         `json:"search_id,omitempty"`
	ConversationHistory string         `json:"conversation_history,omitempty"`
	SearchStrategy      SearchStrategy `json:"search_strategy,omitempty"`
}

// ChatResponse is the answer to a question with its source attribution
type ChatResponse struct {
	Answer         string        `json:"answer"`
	Sources        []string      `json:"sources"`
	ProcessingTime time.Duration `json:"processing_time"`
}
