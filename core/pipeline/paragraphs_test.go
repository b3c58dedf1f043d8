package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/model"
)

func TestParagraphTargetLength(t *testing.T) {
	assert.Equal(t, 15, TargetLength(30), "Lower clamp")
	assert.Equal(t, 30, TargetLength(90), "A third of the input")
	assert.Equal(t, 50, TargetLength(600), "Upper clamp")
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("Short paragraph returned unchanged", func(t *testing.T) {
		completer := &staticCompleter{response: "should not be used"}
		summarizer := NewParagraphSummarizer(completer, model.DefaultProcessingConfig(), quietLogger())

		paragraph := "Only a handful of words here."
		summary := summarizer.Summarize(ctx, paragraph, 50)

		assert.Equal(t, paragraph, summary)
		assert.Equal(t, 0, completer.calls)
	})

	t.Run("Long paragraph is summarized", func(t *testing.T) {
		completer := &staticCompleter{response: "A concise summary of the paragraph."}
		summarizer := NewParagraphSummarizer(completer, model.DefaultProcessingConfig(), quietLogger())

		paragraph := strings.Repeat("many words in this paragraph keep repeating endlessly ", 10)
		summary := summarizer.Summarize(ctx, paragraph, 20)

		assert.Equal(t, "A concise summary of the paragraph.", summary)
		assert.Equal(t, 1, completer.calls)
	})

	t.Run("Model failure falls back to truncation", func(t *testing.T) {
		completer := &staticCompleter{err: errors.New("provider outage")}
		summarizer := NewParagraphSummarizer(completer, model.DefaultProcessingConfig(), quietLogger())

		paragraph := strings.Repeat("word ", 100)
		summary := summarizer.Summarize(ctx, paragraph, 20)

		assert.True(t, strings.HasSuffix(summary, "..."))
		assert.Equal(t, 20, WordCount(summary))
	})
}

func TestSummarizeAll(t *testing.T) {
	completer := &staticCompleter{response: "A concise summary preserving the key information of this paragraph for later search and retrieval needs."}
	summarizer := NewParagraphSummarizer(completer, model.DefaultProcessingConfig(), quietLogger())

	paragraphs := []string{
		strings.Repeat("first paragraph content repeating over and over again without end ", 10),
		strings.Repeat("second paragraph content repeating over and over again without end ", 10),
	}

	summaries := summarizer.SummarizeAll(context.Background(), "book.txt", paragraphs)

	require.Equal(t, 2, len(summaries))
	for i, summary := range summaries {
		assert.Equal(t, i, summary.ParagraphIndex)
		assert.Equal(t, 2, summary.TotalParagraphs)
		assert.Equal(t, paragraphs[i], summary.OriginalText)
		assert.Contains(t, summary.ParagraphID, "book.txt_para_")
		assert.InDelta(t, float64(summary.WordCount)/float64(summary.SummaryWordCount), summary.CompressionRatio, 0.001)
	}
}
