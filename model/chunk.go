package model

import (
	"fmt"
	"strings"
)

// ContentType is a coarse classification of what a chunk contains
type ContentType string

const (
	ContentTypeNumberedList    ContentType = "numbered_list"
	ContentTypeBulletList      ContentType = "bullet_list"
	ContentTypeTable           ContentType = "table_content"
	ContentTypeFigureReference ContentType = "figure_reference"
	ContentTypeSummary         ContentType = "summary_content"
	ContentTypeProcedural      ContentType = "procedural"
	ContentTypeFAQ             ContentType = "faq_content"
	ContentTypeGeneral         ContentType = "general_text"
)

// ChunkMetadata describes a retrieval-sized chunk of a document.
// Invariants: StartChar < EndChar <= len(source text), ChunkIndex < TotalChunks.
type ChunkMetadata struct {
	Filename        string      `json:"filename"`
	ChunkIndex      int         `json:"chunk_index"`
	TotalChunks     int         `json:"total_chunks"`
	ChunkSize       int         `json:"chunk_size"`
	ChunkSummary    string      `json:"chunk_summary"`
	PageNumber      *int        `json:"page_number,omitempty"`
	SectionTitle    *string     `json:"section_title,omitempty"`
	StartChar       int         `json:"start_char"`
	EndChar         int         `json:"end_char"`
	ParagraphNumber int         `json:"paragraph_number"`
	ContentType     ContentType `json:"content_type"`
	KeyTerms        []string    `json:"key_terms"`
	ChunkHash       string      `json:"chunk_hash"`
}

// ChunkWithMetadata pairs a chunk's text with its metadata
type ChunkWithMetadata struct {
	Text     string
	Metadata ChunkMetadata
}

// ID returns the retrieval record id for the chunk. The content hash makes
// re-processing the same text idempotent.
func (c *ChunkMetadata) ID() string {
	return fmt.Sprintf("%s_%d_%s", c.Filename, c.ChunkIndex, c.ChunkHash)
}

// LocationReference returns a human-readable location string for source attribution
func (c *ChunkMetadata) LocationReference() string {
	page := "N/A"
	if c.PageNumber != nil {
		page = fmt.Sprintf("%d", *c.PageNumber)
	}
	section := "Unknown"
	if c.SectionTitle != nil {
		section = *c.SectionTitle
	}
	return fmt.Sprintf("Page %s, Section: %s, Paragraph %d", page, section, c.ParagraphNumber)
}

// ToMetadata converts the chunk metadata into a flat storage map
func (c *ChunkMetadata) ToMetadata() Metadata {
	sectionTitle := "Unknown Section"
	if c.SectionTitle != nil {
		sectionTitle = *c.SectionTitle
	}
	pageNumber := 0
	if c.PageNumber != nil {
		pageNumber = *c.PageNumber
	}

	return Metadata{
		"filename":           c.Filename,
		"chunk_index":        c.ChunkIndex,
		"total_chunks":       c.TotalChunks,
		"chunk_size":         c.ChunkSize,
		"chunk_summary":      c.ChunkSummary,
		"page_number":        pageNumber,
		"section_title":      sectionTitle,
		"start_char":         c.StartChar,
		"end_char":           c.EndChar,
		"paragraph_number":   c.ParagraphNumber,
		"content_type":       string(c.ContentType),
		"key_terms":          strings.Join(c.KeyTerms, ", "),
		"chunk_hash":         c.ChunkHash,
		"location_reference": c.LocationReference(),
	}
}
