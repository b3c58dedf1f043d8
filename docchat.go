// Package docchat answers natural-language questions over uploaded
// documents. Documents are chunked with positional metadata, optionally
// condensed into logical-group and paragraph summaries, and queried
// through a multi-strategy retrieval engine.
package docchat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/docchat/docchat/core/pipeline"
	"github.com/docchat/docchat/core/retrieval"
	"github.com/docchat/docchat/helper"
	"github.com/docchat/docchat/llm"
	"github.com/docchat/docchat/model"
	"github.com/docchat/docchat/store"
)

// DocChat provides a unified interface to document processing and retrieval
type DocChat struct {
	Store      store.Store
	Engine     *retrieval.Engine
	Processor  *pipeline.DocumentProcessor
	Grouper    *pipeline.SentenceGrouper
	Compressor *pipeline.Compressor
	Paragraphs *pipeline.ParagraphSummarizer
	Config     model.ProcessingConfig
	// Logging
	embedder llm.Embedder
	log      *slog.Logger
}

// NewDocChat creates a new DocChat instance with all components initialized
func NewDocChat(vectorStore store.Store, service llm.Service, config model.ProcessingConfig) *DocChat {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	return &DocChat{
		Store:      vectorStore,
		Engine:     retrieval.NewEngine(vectorStore, service, service, logger),
		Processor:  pipeline.NewDocumentProcessor(config, logger),
		Grouper:    pipeline.NewSentenceGrouper(config, logger),
		Compressor: pipeline.NewCompressor(service, config, logger),
		Paragraphs: pipeline.NewParagraphSummarizer(service, config, logger),
		Config:     config,
		embedder:   service,
		log:        logger,
	}
}

// ProcessDocument chunks the document text, embeds each chunk and
// stores it in the primary retrieval collection. The original text is
// stored alongside for later paragraph processing. Malformed input is
// reported as a structured error result, not a raised fault.
func (d *DocChat) ProcessDocument(ctx context.Context, text string, filename string) *model.DocumentResult {
	start := time.Now()

	chunks := d.Processor.ProcessText(text, filename)
	if len(chunks) == 0 {
		return &model.DocumentResult{
			Status:         model.StatusError,
			Message:        fmt.Sprintf("No extractable text found in %s", filename),
			Filename:       filename,
			ProcessingTime: time.Since(start),
		}
	}

	collection, err := d.Engine.Collection(ctx, retrieval.CollectionDocuments)
	if err != nil {
		return d.documentError(filename, "Could not open document collection", err, start)
	}

	stored := 0
	for _, chunk := range chunks {
		embedding, err := d.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			d.log.Error("Embedding chunk failed, skipping", "chunkId", chunk.Metadata.ID(), "error", err)
			continue
		}

		err = collection.Add(ctx,
			[]string{chunk.Metadata.ID()},
			[][]float32{embedding},
			[]string{chunk.Text},
			[]model.Metadata{chunk.Metadata.ToMetadata()},
		)
		if err != nil {
			d.log.Error("Storing chunk failed, skipping", "chunkId", chunk.Metadata.ID(), "error", err)
			continue
		}
		stored++
	}

	if err := d.storeOriginalText(ctx, text, filename); err != nil {
		d.log.Error("Storing original text failed", "filename", filename, "error", err)
	}

	d.log.Info("Document processed", "filename", filename, "chunks", stored)

	return &model.DocumentResult{
		Status:         model.StatusSuccess,
		Message:        fmt.Sprintf("Processed %s into %d chunks", filename, stored),
		Filename:       filename,
		ChunksCreated:  stored,
		ProcessingTime: time.Since(start),
	}
}

// storeOriginalText keeps the full document text for paragraph
// processing. The text itself carries the record, the embedding is a
// placeholder derived from the leading chunk window.
func (d *DocChat) storeOriginalText(ctx context.Context, text string, filename string) error {
	collection, err := d.Engine.Collection(ctx, retrieval.CollectionOriginalTexts)
	if err != nil {
		return err
	}

	sample := text
	if len(sample) > d.Config.ChunkSize {
		sample = sample[:d.Config.ChunkSize]
	}
	embedding, err := d.embedder.Embed(ctx, sample)
	if err != nil {
		return err
	}

	return collection.Add(ctx,
		[]string{filename},
		[][]float32{embedding},
		[]string{text},
		[]model.Metadata{{"filename": filename, "content_type": "original_text"}},
	)
}

// ProcessDocumentHierarchically groups an already-processed document's
// text into logical units and stores their compressed summaries in the
// logical summary collection.
func (d *DocChat) ProcessDocumentHierarchically(ctx context.Context, filename string) *model.HierarchicalResult {
	start := time.Now()

	d.log.Info("Starting hierarchical processing", "filename", filename)

	text, err := d.Engine.DocumentText(ctx, filename)
	if err != nil || text == "" {
		return &model.HierarchicalResult{
			Status:              model.StatusError,
			Message:             fmt.Sprintf("Could not find document text for %s", filename),
			Filename:            filename,
			TotalProcessingTime: time.Since(start),
			Groups:              []*model.CompressedGroup{},
		}
	}

	groups := d.Grouper.GroupText(text)
	compressed := d.Compressor.CompressAll(ctx, groups)

	totalInputWords := 0
	totalOutputWords := 0
	compressedGroups := make([]*model.CompressedGroup, 0, len(compressed))
	for i := range compressed {
		totalInputWords += compressed[i].OriginalGroup.WordCount
		totalOutputWords += pipeline.WordCount(compressed[i].Summary)
		compressedGroups = append(compressedGroups, &compressed[i])
	}

	summariesStored := d.storeSummaries(ctx, compressedGroups, filename)

	overallRatio := 1.0
	if totalOutputWords > 0 {
		overallRatio = float64(totalInputWords) / float64(totalOutputWords)
	}
	averageGroupSize := 0.0
	if len(groups) > 0 {
		averageGroupSize = float64(totalInputWords) / float64(len(groups))
	}

	d.log.Info("Hierarchical processing complete", "groups", len(groups), "ratio", overallRatio)

	return &model.HierarchicalResult{
		Status:               model.StatusSuccess,
		Message:              fmt.Sprintf("Created %d logical groups with %.1f:1 compression", len(groups), overallRatio),
		Filename:             filename,
		LogicalGroupsCreated: len(groups),
		SummariesCreated:     summariesStored,
		TotalProcessingTime:  time.Since(start),
		CompressionStats: model.CompressionStats{
			TotalInputWords:  totalInputWords,
			TotalOutputWords: totalOutputWords,
			OverallRatio:     overallRatio,
			AverageGroupSize: averageGroupSize,
		},
		Groups: compressedGroups,
	}
}

// storeSummaries writes compressed group summaries to the logical
// summary collection. Summaries are stored in group order, a failing
// summary is logged and skipped.
func (d *DocChat) storeSummaries(ctx context.Context, compressed []*model.CompressedGroup, filename string) int {
	collection, err := d.Engine.Collection(ctx, retrieval.CollectionLogicalSummaries)
	if err != nil {
		d.log.Error("Could not open summary collection", "error", err)
		return 0
	}

	stored := 0
	for _, group := range compressed {
		embedding, err := d.embedder.Embed(ctx, group.Summary)
		if err != nil {
			d.log.Error("Embedding summary failed, skipping", "groupId", group.OriginalGroup.GroupID, "error", err)
			continue
		}

		err = collection.Add(ctx,
			[]string{fmt.Sprintf("%s_%s", filename, group.OriginalGroup.GroupID)},
			[][]float32{embedding},
			[]string{group.Summary},
			[]model.Metadata{{
				"filename":          filename,
				"group_id":          group.OriginalGroup.GroupID,
				"content_type":      "logical_summary",
				"original_words":    group.OriginalGroup.WordCount,
				"summary_words":     pipeline.WordCount(group.Summary),
				"compression_ratio": group.CompressionRatio,
				"strategy_used":     string(group.StrategyUsed),
			}},
		)
		if err != nil {
			d.log.Error("Storing summary failed, skipping", "groupId", group.OriginalGroup.GroupID, "error", err)
			continue
		}
		stored++
	}

	return stored
}

// ProcessDocumentParagraphs summarizes the document at paragraph level
// and stores the summaries in the paragraph summary collection.
func (d *DocChat) ProcessDocumentParagraphs(ctx context.Context, filename string) *model.ParagraphResult {
	start := time.Now()

	d.log.Info("Starting paragraph processing", "filename", filename)

	text, err := d.Engine.OriginalText(ctx, filename)
	if err != nil || text == "" {
		return &model.ParagraphResult{
			Status:              model.StatusError,
			Message:             fmt.Sprintf("Could not find document text for %s", filename),
			Filename:            filename,
			TotalProcessingTime: time.Since(start),
			Paragraphs:          []*model.ParagraphSummary{},
		}
	}

	paragraphs := d.Paragraphs.SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return &model.ParagraphResult{
			Status:              model.StatusError,
			Message:             "No paragraphs found in document",
			Filename:            filename,
			TotalProcessingTime: time.Since(start),
			Paragraphs:          []*model.ParagraphSummary{},
		}
	}

	summaries := d.Paragraphs.SummarizeAll(ctx, filename, paragraphs)

	totalInputWords := 0
	totalOutputWords := 0
	paragraphSummaries := make([]*model.ParagraphSummary, 0, len(summaries))
	for i := range summaries {
		totalInputWords += summaries[i].WordCount
		totalOutputWords += summaries[i].SummaryWordCount
		paragraphSummaries = append(paragraphSummaries, &summaries[i])
	}

	summariesStored := d.storeParagraphSummaries(ctx, paragraphSummaries, filename)

	overallRatio := 1.0
	if totalOutputWords > 0 {
		overallRatio = float64(totalInputWords) / float64(totalOutputWords)
	}

	d.log.Info("Paragraph processing complete", "paragraphs", len(paragraphs), "ratio", overallRatio)

	return &model.ParagraphResult{
		Status:              model.StatusSuccess,
		Message:             fmt.Sprintf("Processed %d paragraphs with %.1f:1 compression", len(paragraphs), overallRatio),
		Filename:            filename,
		ParagraphsProcessed: len(paragraphs),
		SummariesCreated:    summariesStored,
		TotalProcessingTime: time.Since(start),
		CompressionStats: model.CompressionStats{
			TotalInputWords:  totalInputWords,
			TotalOutputWords: totalOutputWords,
			OverallRatio:     overallRatio,
			AverageGroupSize: float64(totalInputWords) / float64(len(paragraphs)),
		},
		Paragraphs: paragraphSummaries,
	}
}

func (d *DocChat) storeParagraphSummaries(ctx context.Context, summaries []*model.ParagraphSummary, filename string) int {
	collection, err := d.Engine.Collection(ctx, retrieval.CollectionParagraphSummaries)
	if err != nil {
		d.log.Error("Could not open paragraph collection", "error", err)
		return 0
	}

	stored := 0
	for _, summary := range summaries {
		embedding, err := d.embedder.Embed(ctx, summary.Summary)
		if err != nil {
			d.log.Error("Embedding paragraph summary failed, skipping", "paragraphId", summary.ParagraphID, "error", err)
			continue
		}

		original := summary.OriginalText
		if len(original) > 500 {
			original = original[:500] + "..."
		}

		err = collection.Add(ctx,
			[]string{summary.ParagraphID},
			[][]float32{embedding},
			[]string{summary.Summary},
			[]model.Metadata{{
				"filename":          filename,
				"paragraph_index":   summary.ParagraphIndex,
				"total_paragraphs":  summary.TotalParagraphs,
				"content_type":      "paragraph_summary",
				"original_words":    summary.WordCount,
				"summary_words":     summary.SummaryWordCount,
				"compression_ratio": summary.CompressionRatio,
				"original_text":     original,
			}},
		)
		if err != nil {
			d.log.Error("Storing paragraph summary failed, skipping", "paragraphId", summary.ParagraphID, "error", err)
			continue
		}
		stored++
	}

	return stored
}

// Search performs a filtered multi-collection vector search
func (d *DocChat) Search(ctx context.Context, request model.SearchRequest) (*model.SearchResponse, error) {
	return d.Engine.SearchDocuments(ctx, request)
}

// Ask answers a question using stored documents as context
func (d *DocChat) Ask(ctx context.Context, request model.AskRequest) (*model.ChatResponse, error) {
	return d.Engine.Ask(ctx, request)
}

// SearchWithLocationInfo answers a question and cites page and section
// locations from the chunk metadata.
func (d *DocChat) SearchWithLocationInfo(ctx context.Context, query string, topK int, conversationHistory string) (*model.ChatResponse, error) {
	return d.Engine.SearchWithLocationInfo(ctx, query, topK, conversationHistory)
}

// SystemStatus summarizes the stored corpus
type SystemStatus struct {
	Collections int      `json:"collections"`
	Documents   int      `json:"documents"`
	Filenames   []string `json:"filenames"`
}

// Status counts collections and unique documents across all collections
func (d *DocChat) Status(ctx context.Context) (*SystemStatus, error) {
	names, err := d.Store.ListCollections(ctx)
	if err != nil {
		return nil, helper.NewError("list collections", err)
	}

	unique := map[string]bool{}
	for _, name := range names {
		collection, err := d.Engine.Collection(ctx, name)
		if err != nil {
			d.log.Warn("Skipping collection in status", "collection", name, "error", err)
			continue
		}

		records, err := collection.Get(ctx, nil, nil, 0)
		if err != nil {
			d.log.Warn("Counting documents failed", "collection", name, "error", err)
			continue
		}
		for _, record := range records {
			if filename := record.Metadata.String("filename", ""); filename != "" {
				unique[filename] = true
			}
		}
	}

	filenames := make([]string, 0, len(unique))
	for filename := range unique {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	return &SystemStatus{
		Collections: len(names),
		Documents:   len(unique),
		Filenames:   filenames,
	}, nil
}

func (d *DocChat) documentError(filename, message string, err error, start time.Time) *model.DocumentResult {
	d.log.Error(message, "filename", filename, "error", err)
	return &model.DocumentResult{
		Status:         model.StatusError,
		Message:        fmt.Sprintf("%s: %v", message, err),
		Filename:       filename,
		ProcessingTime: time.Since(start),
	}
}
