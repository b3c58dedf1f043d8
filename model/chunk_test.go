package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	metadata := ChunkMetadata{Filename: "alice.txt", ChunkIndex: 4, ChunkHash: "a1b2c3d4e5f6"}

	assert.Equal(t, "alice.txt_4_a1b2c3d4e5f6", metadata.ID())
}

func TestLocationReference(t *testing.T) {
	t.Run("Full location", func(t *testing.T) {
		page := 3
		section := "Chapter 1"
		metadata := ChunkMetadata{PageNumber: &page, SectionTitle: &section, ParagraphNumber: 2}

		assert.Equal(t, "Page 3, Section: Chapter 1, Paragraph 2", metadata.LocationReference())
	})

	t.Run("Missing page and section", func(t *testing.T) {
		metadata := ChunkMetadata{ParagraphNumber: 1}

		assert.Equal(t, "Page N/A, Section: Unknown, Paragraph 1", metadata.LocationReference())
	})
}

func TestChunkToMetadata(t *testing.T) {
	page := 3
	section := "Chapter 1"
	metadata := ChunkMetadata{
		Filename:        "alice.txt",
		ChunkIndex:      1,
		TotalChunks:     5,
		ChunkSize:       420,
		ChunkSummary:    "Alice meets the cat",
		PageNumber:      &page,
		SectionTitle:    &section,
		StartChar:       100,
		EndChar:         520,
		ParagraphNumber: 2,
		ContentType:     ContentTypeGeneral,
		KeyTerms:        []string{"Alice", "Wonderland"},
		ChunkHash:       "a1b2c3d4e5f6",
	}

	flat := metadata.ToMetadata()

	assert.Equal(t, "alice.txt", flat.String("filename", ""))
	assert.Equal(t, 1, flat.Int("chunk_index", -1))
	assert.Equal(t, 3, flat.Int("page_number", -1))
	assert.Equal(t, "Chapter 1", flat.String("section_title", ""))
	assert.Equal(t, "general_text", flat.String("content_type", ""))
	assert.Equal(t, "Alice, Wonderland", flat.String("key_terms", ""))
	assert.Equal(t, "Page 3, Section: Chapter 1, Paragraph 2", flat.String("location_reference", ""))

	t.Run("Missing page and section use defaults", func(t *testing.T) {
		bare := ChunkMetadata{Filename: "alice.txt"}
		flat := bare.ToMetadata()

		assert.Equal(t, 0, flat.Int("page_number", -1))
		assert.Equal(t, "Unknown Section", flat.String("section_title", ""))
	})
}
