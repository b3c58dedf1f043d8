package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docchat/docchat/llm"
	"github.com/docchat/docchat/model"
)

// Compressor reduces logical groups to target-ratio summaries using a
// language model, with a deterministic truncation fallback.
type Compressor struct {
	completer   llm.Completer
	bypassWords int
	maxCalls    int
	logger      *slog.Logger
}

// NewCompressor creates a compressor with the given processing configuration
func NewCompressor(completer llm.Completer, config model.ProcessingConfig, logger *slog.Logger) *Compressor {
	maxCalls := config.MaxConcurrentCalls
	if maxCalls <= 0 {
		maxCalls = 1
	}

	return &Compressor{
		completer:   completer,
		bypassWords: config.CompressionBypassWords,
		maxCalls:    maxCalls,
		logger:      logger,
	}
}

// chooseStrategy selects a compression strategy from content keywords
func chooseStrategy(text string) model.CompressionStrategy {
	lower := strings.ToLower(text)

	for _, indicator := range []string{"steps", "procedure", "method", "process"} {
		if strings.Contains(lower, indicator) {
			return model.StrategyDetailed
		}
	}
	for _, indicator := range []string{"list", "including", "such as"} {
		if strings.Contains(lower, indicator) {
			return model.StrategyBalanced
		}
	}
	return model.StrategyBalanced
}

// targetLength clamps input_words/ratio to [10, 50]
func targetLength(inputWords int, strategy model.CompressionStrategy) int {
	target := int(float64(inputWords) / strategy.Ratio())
	if target < 10 {
		return 10
	}
	if target > 50 {
		return 50
	}
	return target
}

// Compress reduces a logical group to its target-ratio summary.
// Groups under the bypass threshold are returned unchanged. A model
// failure falls back to truncating the original text.
func (c *Compressor) Compress(ctx context.Context, group model.LogicalGroup) model.CompressedGroup {
	start := time.Now()

	if group.WordCount < c.bypassWords {
		return model.CompressedGroup{
			OriginalGroup:    group,
			Summary:          group.CombinedText,
			CompressionRatio: 1.0,
			StrategyUsed:     model.StrategyNoCompression,
			ProcessingTime:   time.Since(start),
		}
	}

	strategy := chooseStrategy(group.CombinedText)
	target := targetLength(group.WordCount, strategy)

	prompt := fmt.Sprintf(`Compress this text to exactly %d words while preserving key information and searchable content.

Requirements:
- Target: %d words (compressed from %d words)
- Keep proper names, character names, and important details
- Preserve the main topic and key events
- Make it useful for search and retrieval

Original text:
%s

Compressed summary (%d words):`, target, target, group.WordCount, group.CombinedText, target)

	messages := []llm.Message{
		{
			Role:    llm.RoleSystem,
			Content: fmt.Sprintf("You are an expert at creating %d-word summaries that preserve essential information for search.", target),
		},
		{Role: llm.RoleUser, Content: prompt},
	}

	response, err := c.completer.Complete(ctx, messages, 0.1, target*3)
	if err != nil {
		c.logger.Error("Compression failed, falling back to truncation", "group", group.GroupID, "error", err)

		words := strings.Fields(group.CombinedText)
		if len(words) > target {
			words = words[:target]
		}

		return model.CompressedGroup{
			OriginalGroup:    group,
			Summary:          strings.Join(words, " ") + "...",
			CompressionRatio: float64(group.WordCount) / float64(target),
			StrategyUsed:     model.StrategyFallback,
			ProcessingTime:   time.Since(start),
		}
	}

	summary := strings.TrimSpace(response)
	summaryWords := WordCount(summary)
	ratio := 1.0
	if summaryWords > 0 {
		ratio = float64(group.WordCount) / float64(summaryWords)
	}

	return model.CompressedGroup{
		OriginalGroup:    group,
		Summary:          summary,
		CompressionRatio: ratio,
		StrategyUsed:     strategy,
		ProcessingTime:   time.Since(start),
	}
}

// CompressAll compresses groups with bounded concurrent fan-out.
// Results are returned in the order of the input groups.
func (c *Compressor) CompressAll(ctx context.Context, groups []model.LogicalGroup) []model.CompressedGroup {
	compressed := make([]model.CompressedGroup, len(groups))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.maxCalls)

	for i, group := range groups {
		eg.Go(func() error {
			compressed[i] = c.Compress(egCtx, group)
			return nil
		})
	}

	// Compress never returns an error, each group has its own fallback
	_ = eg.Wait()

	return compressed
}
