package model

import "time"

// Status values for processing results
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DocumentResult is the outcome of chunk-level document processing
type DocumentResult struct {
	Status         string        `json:"status"`
	Message        string        `json:"message"`
	Filename       string        `json:"filename"`
	ChunksCreated  int           `json:"chunks_created"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// CompressionStats aggregates word counts across a processed document
type CompressionStats struct {
	TotalInputWords  int     `json:"total_input_words"`
	TotalOutputWords int     `json:"total_output_words"`
	OverallRatio     float64 `json:"overall_compression_ratio"`
	AverageGroupSize float64 `json:"average_group_size"`
}

// HierarchicalResult is the outcome of logical grouping and compression
type HierarchicalResult struct {
	Status               string             `json:"status"`
	Message              string             `json:"message"`
	Filename             string             `json:"filename"`
	LogicalGroupsCreated int                `json:"logical_groups_created"`
	SummariesCreated     int                `json:"summaries_created"`
	TotalProcessingTime  time.Duration      `json:"total_processing_time"`
	CompressionStats     CompressionStats   `json:"compression_stats"`
	Groups               []*CompressedGroup `json:"groups"`
}

// ParagraphResult is the outcome of paragraph-level summarization
type ParagraphResult struct {
	Status              string              `json:"status"`
	Message             string              `json:"message"`
	Filename            string              `json:"filename"`
	ParagraphsProcessed int                 `json:"paragraphs_processed"`
	SummariesCreated    int                 `json:"summaries_created"`
	TotalProcessingTime time.Duration       `json:"total_processing_time"`
	CompressionStats    CompressionStats    `json:"compression_stats"`
	Paragraphs          []*ParagraphSummary `json:"paragraphs"`
}
