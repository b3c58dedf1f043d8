package model

import "time"

// ParagraphSummary is a paragraph with its generated summary
type ParagraphSummary struct {
	ParagraphID      string        `json:"paragraph_id"`
	OriginalText     string        `json:"original_text"`
	Summary          string        `json:"summary"`
	WordCount        int           `json:"word_count"`
	SummaryWordCount int           `json:"summary_word_count"`
	CompressionRatio float64       `json:"compression_ratio"`
	ParagraphIndex   int           `json:"paragraph_index"`
	TotalParagraphs  int           `json:"total_paragraphs"`
	ProcessingTime   time.Duration `json:"processing_time"`
}
