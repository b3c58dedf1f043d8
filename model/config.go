package model

// ProcessingConfig represents the tunables of the text processing pipeline
type ProcessingConfig struct {
	// Chunking parameters
	ChunkSize    int `json:"chunk_size"`    // Maximum chunk size in characters
	ChunkOverlap int `json:"chunk_overlap"` // Overlap window carried between chunks, in characters

	// Sentence grouping parameters
	MinSentenceLength   int     `json:"min_sentence_length"`  // Sentences at or below this length are noise
	GroupWordLimit      int     `json:"group_word_limit"`     // Maximum words per logical group
	SimilarityThreshold float64 `json:"similarity_threshold"` // Lexical Jaccard threshold for group breaks

	// Compression parameters
	CompressionBypassWords int `json:"compression_bypass_words"` // Groups under this word count skip compression
	MaxConcurrentCalls     int `json:"max_concurrent_calls"`     // Cap on parallel model calls during compression

	// Paragraph parameters
	MinParagraphLength int `json:"min_paragraph_length"` // Paragraphs under this many characters are dropped
}

// DefaultProcessingConfig returns the documented default configuration
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		ChunkSize:              1000,
		ChunkOverlap:           100,
		MinSentenceLength:      10,
		GroupWordLimit:         150,
		SimilarityThreshold:    0.3,
		CompressionBypassWords: 40,
		MaxConcurrentCalls:     4,
		MinParagraphLength:     50,
	}
}
