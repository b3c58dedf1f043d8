// Package retrieval implements multi-collection vector search, search
// result caching and prompt composition for question answering.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docchat/docchat/helper"
	"github.com/docchat/docchat/llm"
	"github.com/docchat/docchat/model"
	"github.com/docchat/docchat/store"
)

// Collection names for the retrieval tiers
const (
	CollectionDocuments          = "documents"
	CollectionLogicalSummaries   = "logical_summaries"
	CollectionParagraphSummaries = "paragraph_summaries"
	CollectionOriginalTexts      = "original_texts"
)

// NoContextAnswer is returned when no retrievable context exists
const NoContextAnswer = "No relevant documents found. Please upload some documents first."

// Engine queries the vector collections, merges and scores results,
// caches result sets for reuse and composes the answer prompts.
type Engine struct {
	store     store.Store
	embedder  llm.Embedder
	completer llm.Completer
	cache     *SearchCache
	logger    *slog.Logger

	mutex       sync.Mutex
	collections map[string]store.Collection
}

// NewEngine creates a retrieval engine on the given store and model service
func NewEngine(vectorStore store.Store, embedder llm.Embedder, completer llm.Completer, logger *slog.Logger) *Engine {
	return &Engine{
		store:       vectorStore,
		embedder:    embedder,
		completer:   completer,
		cache:       NewSearchCache(),
		logger:      logger,
		collections: map[string]store.Collection{},
	}
}

// Collection returns the named collection, fetched lazily and cached by name
func (e *Engine) Collection(ctx context.Context, name string) (store.Collection, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	collection, ok := e.collections[name]
	if ok {
		return collection, nil
	}

	collection, err := e.store.GetOrCreateCollection(ctx, name)
	if err != nil {
		return nil, helper.NewError("get or create collection", err)
	}
	e.collections[name] = collection
	return collection, nil
}

// Cache returns the engine's search cache
func (e *Engine) Cache() *SearchCache {
	return e.cache
}

// SearchDocuments queries each requested collection independently with
// the same query embedding and merges the results. A failing
// collection is skipped and omitted from CollectionsSearched. The
// response is cached under a new search id for later reuse.
func (e *Engine) SearchDocuments(ctx context.Context, request model.SearchRequest) (*model.SearchResponse, error) {
	start := time.Now()

	if strings.TrimSpace(request.Query) == "" {
		return nil, helper.NewError("search request validation", fmt.Errorf("query must not be empty"))
	}

	topK := request.TopK
	if topK <= 0 {
		topK = 5
	}

	embedding, err := e.embedder.Embed(ctx, request.Query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	collectionNames := request.Collections
	if len(collectionNames) == 0 {
		collectionNames, err = e.store.ListCollections(ctx)
		if err != nil {
			return nil, helper.NewError("list collections", err)
		}
	}

	var filter map[string]interface{}
	if len(request.Documents) > 0 {
		filter = map[string]interface{}{"filename": request.Documents}
	}

	excluded := map[string]bool{}
	for _, filename := range request.ExcludeDocuments {
		excluded[filename] = true
	}

	var results []model.SearchResult
	var searched []string

	for _, name := range collectionNames {
		collection, err := e.Collection(ctx, name)
		if err != nil {
			e.logger.Warn("Skipping unavailable collection", "collection", name, "error", err)
			continue
		}

		matches, err := collection.Query(ctx, embedding, topK, filter)
		if err != nil {
			e.logger.Warn("Collection query failed, skipping", "collection", name, "error", err)
			continue
		}

		for _, match := range matches {
			filename := match.Metadata.String("filename", "")
			if excluded[filename] {
				continue
			}

			score := distanceToScore(match.Distance)
			if request.Threshold > 0 && score < request.Threshold {
				continue
			}

			results = append(results, model.SearchResult{
				Content:    match.Document,
				Score:      score,
				Document:   filename,
				ChunkID:    match.ID,
				Collection: name,
				Metadata:   match.Metadata,
			})
		}

		searched = append(searched, name)
	}

	// Stable sort keeps the per-collection order for equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	response := &model.SearchResponse{
		SearchID:            uuid.New().String(),
		Query:               request.Query,
		Results:             results,
		TotalResults:        len(results),
		UniqueDocuments:     uniqueDocuments(results),
		ChunkIDs:            chunkIDs(results),
		ProcessingTime:      time.Since(start),
		CollectionsSearched: searched,
	}
	e.cache.Put(response)

	e.logger.Info("Search complete", "query", request.Query, "results", len(results), "collections", len(searched))

	return response, nil
}

// distanceToScore converts a cosine distance into a similarity in
// [0, 1]. Distances of 1 or more clamp to 0.
func distanceToScore(distance float64) float64 {
	if distance < 1 {
		return 1 - distance
	}
	return 0
}

func uniqueDocuments(results []model.SearchResult) []string {
	seen := map[string]bool{}
	var documents []string
	for _, result := range results {
		if result.Document != "" && !seen[result.Document] {
			seen[result.Document] = true
			documents = append(documents, result.Document)
		}
	}
	return documents
}

func chunkIDs(results []model.SearchResult) []string {
	ids := make([]string, 0, len(results))
	for _, result := range results {
		ids = append(ids, result.ChunkID)
	}
	return ids
}

// Ask answers a question over the stored documents. Context is
// gathered from a cached search, explicit chunk ids or a fresh
// search, in that priority order.
func (e *Engine) Ask(ctx context.Context, request model.AskRequest) (*model.ChatResponse, error) {
	start := time.Now()

	strategy, err := model.ParseSearchStrategy(string(request.SearchStrategy))
	if err != nil {
		return nil, helper.NewError("parse search strategy", err)
	}

	results, err := e.gatherContext(ctx, request, strategy)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return &model.ChatResponse{
			Answer:         NoContextAnswer,
			Sources:        []string{},
			ProcessingTime: time.Since(start),
		}, nil
	}

	blocks := splitIntoBlocks(results)
	messages := composePrompt(strategy, request.Question, blocks, request.ConversationHistory)

	answer, err := e.completer.Complete(ctx, messages, 0.1, 1000)
	if err != nil {
		return nil, helper.NewError("generate answer", err)
	}

	return &model.ChatResponse{
		Answer:         strings.TrimSpace(answer),
		Sources:        attributeSources(results),
		ProcessingTime: time.Since(start),
	}, nil
}

// gatherContext selects the context records for an ask request. The
// three entry paths are mutually exclusive: cached search id first,
// explicit chunk ids second, fresh search last. An unknown search id
// silently falls through to a fresh search.
func (e *Engine) gatherContext(ctx context.Context, request model.AskRequest, strategy model.SearchStrategy) ([]model.SearchResult, error) {
	if request.SearchID != "" {
		if cached, ok := e.cache.Get(request.SearchID); ok {
			e.logger.Info("Reusing cached search results", "searchId", request.SearchID, "results", len(cached.Results))
			return cached.Results, nil
		}
		e.logger.Warn("Unknown search id, falling through to fresh search", "searchId", request.SearchID)
	}

	if len(request.ChunkIDs) > 0 {
		return e.fetchByChunkIDs(ctx, request.ChunkIDs)
	}

	response, err := e.SearchDocuments(ctx, model.SearchRequest{
		Query:            request.Question,
		TopK:             request.TopK,
		Collections:      strategyCollections(strategy),
		Documents:        request.Documents,
		ExcludeDocuments: request.ExcludeDocuments,
	})
	if err != nil {
		return nil, err
	}
	return response.Results, nil
}

// strategyCollections returns the retrieval tiers each strategy reads
func strategyCollections(strategy model.SearchStrategy) []string {
	switch strategy {
	case model.StrategyEnhanced:
		return []string{CollectionDocuments, CollectionLogicalSummaries}
	case model.StrategyParagraph:
		return []string{CollectionDocuments, CollectionParagraphSummaries}
	default:
		return []string{CollectionDocuments}
	}
}

// fetchByChunkIDs fetches specific records by id across all known
// collections. A failing collection is logged and skipped.
func (e *Engine) fetchByChunkIDs(ctx context.Context, ids []string) ([]model.SearchResult, error) {
	names, err := e.store.ListCollections(ctx)
	if err != nil {
		return nil, helper.NewError("list collections", err)
	}

	var results []model.SearchResult
	for _, name := range names {
		collection, err := e.Collection(ctx, name)
		if err != nil {
			e.logger.Warn("Skipping unavailable collection", "collection", name, "error", err)
			continue
		}

		records, err := collection.Get(ctx, ids, nil, 0)
		if err != nil {
			e.logger.Warn("Fetching chunks failed, skipping collection", "collection", name, "error", err)
			continue
		}

		for _, record := range records {
			results = append(results, model.SearchResult{
				Content:    record.Document,
				Score:      1.0,
				Document:   record.Metadata.String("filename", ""),
				ChunkID:    record.ID,
				Collection: name,
				Metadata:   record.Metadata,
			})
		}
	}

	return results, nil
}

// splitIntoBlocks separates gathered results by retrieval tier
func splitIntoBlocks(results []model.SearchResult) contextBlocks {
	blocks := contextBlocks{}
	for _, result := range results {
		switch result.Collection {
		case CollectionLogicalSummaries:
			blocks.summaries = append(blocks.summaries, result.Content)
		case CollectionParagraphSummaries:
			blocks.paragraphs = append(blocks.paragraphs, result.Content)
		default:
			blocks.chunks = append(blocks.chunks, result.Content)
		}
	}
	return blocks
}

// attributeSources returns distinct source labels, tagged by the
// originating collection. A filename can appear once per tier.
func attributeSources(results []model.SearchResult) []string {
	seen := map[string]bool{}
	var sources []string

	for _, result := range results {
		if result.Document == "" {
			continue
		}

		label := result.Document
		switch result.Collection {
		case CollectionLogicalSummaries:
			label = "Summary: " + result.Document
		case CollectionParagraphSummaries:
			label = "Paragraph: " + result.Document
		}

		if !seen[label] {
			seen[label] = true
			sources = append(sources, label)
		}
	}

	return sources
}

// SearchWithLocationInfo answers a question with each context block
// prefixed by its source location and instructs the model to cite
// those locations.
func (e *Engine) SearchWithLocationInfo(ctx context.Context, query string, topK int, conversationHistory string) (*model.ChatResponse, error) {
	start := time.Now()

	if topK <= 0 {
		topK = 3
	}

	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	collection, err := e.Collection(ctx, CollectionDocuments)
	if err != nil {
		return nil, err
	}

	matches, err := collection.Query(ctx, embedding, topK, nil)
	if err != nil {
		return nil, helper.NewError("query documents", err)
	}

	if len(matches) == 0 {
		return &model.ChatResponse{
			Answer:         NoContextAnswer,
			Sources:        []string{},
			ProcessingTime: time.Since(start),
		}, nil
	}

	var taggedChunks []string
	var sources []string
	for _, match := range matches {
		location := match.Metadata.String("location_reference", "Unknown location")
		summary := match.Metadata.String("chunk_summary", "No summary available")

		taggedChunks = append(taggedChunks, fmt.Sprintf("[Source: %s]\n%s\n[Summary: %s]\n", location, match.Document, summary))
		sources = append(sources, fmt.Sprintf("%s (%s)", match.Metadata.String("filename", ""), location))
	}

	messages := composeLocationAwarePrompt(query, taggedChunks, conversationHistory)

	answer, err := e.completer.Complete(ctx, messages, 0.1, 1000)
	if err != nil {
		return nil, helper.NewError("generate answer", err)
	}

	return &model.ChatResponse{
		Answer:         strings.TrimSpace(answer),
		Sources:        sources,
		ProcessingTime: time.Since(start),
	}, nil
}

// DocumentText reassembles a document's full text from its stored
// chunks, sorted by chunk index.
func (e *Engine) DocumentText(ctx context.Context, filename string) (string, error) {
	collection, err := e.Collection(ctx, CollectionDocuments)
	if err != nil {
		return "", err
	}

	records, err := collection.Get(ctx, nil, map[string]interface{}{"filename": filename}, 2000)
	if err != nil {
		return "", helper.NewError("get document chunks", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Metadata.Int("chunk_index", 0) < records[j].Metadata.Int("chunk_index", 0)
	})

	chunks := make([]string, 0, len(records))
	for _, record := range records {
		chunks = append(chunks, record.Document)
	}
	return strings.Join(chunks, " "), nil
}

// OriginalText returns a document's stored original text, if any
func (e *Engine) OriginalText(ctx context.Context, filename string) (string, error) {
	collection, err := e.Collection(ctx, CollectionOriginalTexts)
	if err != nil {
		return "", err
	}

	records, err := collection.Get(ctx, nil, map[string]interface{}{"filename": filename}, 1)
	if err != nil {
		return "", helper.NewError("get original text", err)
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[0].Document, nil
}
