package model

import "time"

// CompressionStrategy identifies how a logical group was compressed
type CompressionStrategy string

const (
	StrategyDetailed      CompressionStrategy = "detailed"       // 8:1, for procedural content
	StrategyBalanced      CompressionStrategy = "balanced"       // 10:1, the default
	StrategyAggressive    CompressionStrategy = "aggressive"     // 15:1, reserved, never auto-selected
	StrategyNoCompression CompressionStrategy = "no_compression" // Groups too short to compress
	StrategyFallback      CompressionStrategy = "fallback"       // Truncation after a model failure
)

// Ratio returns the target input:output word ratio for the strategy
func (s CompressionStrategy) Ratio() float64 {
	switch s {
	case StrategyDetailed:
		return 8.0
	case StrategyAggressive:
		return 15.0
	default:
		return 10.0
	}
}

// LogicalGroup is a run of sentences judged to express one coherent idea.
// Groups are created by the sentence grouper and never mutated afterwards.
type LogicalGroup struct {
	GroupID         string   `json:"group_id"`
	Sentences       []string `json:"sentences"`
	CombinedText    string   `json:"combined_text"`
	TopicIndicators []string `json:"topic_indicators"`
	WordCount       int      `json:"word_count"`
	CoherenceScore  float64  `json:"coherence_score"`
}

// CompressedGroup wraps a logical group with its generated summary
type CompressedGroup struct {
	OriginalGroup    LogicalGroup        `json:"original_group"`
	Summary          string              `json:"summary"`
	CompressionRatio float64             `json:"compression_ratio"`
	StrategyUsed     CompressionStrategy `json:"strategy_used"`
	ProcessingTime   time.Duration       `json:"processing_time"`
}
