package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docchat/docchat/llm"
	"github.com/docchat/docchat/model"
)

// ParagraphSummarizer produces fixed-ratio summaries on natural
// paragraph boundaries, independent of the sentence grouper.
type ParagraphSummarizer struct {
	completer          llm.Completer
	minParagraphLength int
	logger             *slog.Logger
}

// NewParagraphSummarizer creates a summarizer with the given processing configuration
func NewParagraphSummarizer(completer llm.Completer, config model.ProcessingConfig, logger *slog.Logger) *ParagraphSummarizer {
	return &ParagraphSummarizer{
		completer:          completer,
		minParagraphLength: config.MinParagraphLength,
		logger:             logger,
	}
}

// SplitParagraphs returns the substantive paragraphs of the text
func (p *ParagraphSummarizer) SplitParagraphs(text string) []string {
	return SplitParagraphs(text, p.minParagraphLength)
}

// TargetLength aims for 3:1 compression, clamped to [15, 50] words
func TargetLength(wordCount int) int {
	target := wordCount / 3
	if target < 15 {
		return 15
	}
	if target > 50 {
		return 50
	}
	return target
}

// Summarize compresses a paragraph to at most targetLength words.
// Paragraphs already at or under the target are returned unchanged.
// A model failure falls back to truncating the paragraph.
func (p *ParagraphSummarizer) Summarize(ctx context.Context, paragraph string, targetLength int) string {
	if WordCount(paragraph) <= targetLength {
		return paragraph
	}

	prompt := fmt.Sprintf(`Summarize this paragraph in exactly %d words or less while preserving the key information and main ideas.

Requirements:
- Keep the most important information
- Maintain searchable keywords
- Preserve proper nouns and key concepts
- Write in clear, concise language

Paragraph:
%s

Summary (%d words max):`, targetLength, paragraph, targetLength)

	messages := []llm.Message{
		{
			Role:    llm.RoleSystem,
			Content: fmt.Sprintf("You are an expert at creating %d-word paragraph summaries that preserve essential information.", targetLength),
		},
		{Role: llm.RoleUser, Content: prompt},
	}

	response, err := p.completer.Complete(ctx, messages, 0.1, targetLength*2)
	if err != nil {
		p.logger.Error("Paragraph summarization failed, falling back to truncation", "error", err)

		words := strings.Fields(paragraph)
		if len(words) > targetLength {
			words = words[:targetLength]
		}
		return strings.Join(words, " ") + "..."
	}

	return strings.TrimSpace(response)
}

// SummarizeAll summarizes all paragraphs of a document in order
func (p *ParagraphSummarizer) SummarizeAll(ctx context.Context, filename string, paragraphs []string) []model.ParagraphSummary {
	summaries := make([]model.ParagraphSummary, 0, len(paragraphs))

	for i, paragraph := range paragraphs {
		start := time.Now()

		wordCount := WordCount(paragraph)
		target := TargetLength(wordCount)

		summary := p.Summarize(ctx, paragraph, target)
		summaryWords := WordCount(summary)

		ratio := 1.0
		if summaryWords > 0 {
			ratio = float64(wordCount) / float64(summaryWords)
		}

		summaries = append(summaries, model.ParagraphSummary{
			ParagraphID:      fmt.Sprintf("%s_para_%d", filename, i),
			OriginalText:     paragraph,
			Summary:          summary,
			WordCount:        wordCount,
			SummaryWordCount: summaryWords,
			CompressionRatio: ratio,
			ParagraphIndex:   i,
			TotalParagraphs:  len(paragraphs),
			ProcessingTime:   time.Since(start),
		})

		p.logger.Info("Processed paragraph", "index", i+1, "total", len(paragraphs), "words", wordCount, "summaryWords", summaryWords)
	}

	return summaries
}
