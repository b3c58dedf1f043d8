package pipeline

import (
	"strings"

	"github.com/docchat/docchat/model"
)

// Chunker splits text into retrieval-sized chunks that respect
// sentence and paragraph boundaries.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given processing configuration
func NewChunker(config model.ProcessingConfig) *Chunker {
	return &Chunker{
		chunkSize:    config.ChunkSize,
		chunkOverlap: config.ChunkOverlap,
	}
}

// SplitText splits text into chunks of at most the configured size.
// Paragraphs that fit become single chunks; oversized paragraphs are
// split sentence by sentence with a trailing character overlap window
// carried into the next chunk. Every non-empty paragraph ends up in a
// chunk, so the chunks cover the full document text.
func (c *Chunker) SplitText(text string) []string {
	paragraphs := SplitParagraphs(text, 0)

	var chunks []string
	for _, paragraph := range paragraphs {
		chunks = append(chunks, c.chunkParagraph(paragraph)...)
	}
	return chunks
}

func (c *Chunker) chunkParagraph(paragraph string) []string {
	if len(paragraph) <= c.chunkSize {
		return []string{paragraph}
	}

	sentences := SplitSentences(paragraph)

	var chunks []string
	var current string
	var currentSentences []string

	for _, sentence := range sentences {
		potential := sentence
		if current != "" {
			potential = current + " " + sentence
		}

		if len(potential) > c.chunkSize && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))

			overlap := c.overlapWindow(currentSentences)
			if overlap != "" {
				current = overlap + " " + sentence
			} else {
				current = sentence
			}
			currentSentences = []string{sentence}
		} else {
			current = potential
			currentSentences = append(currentSentences, sentence)
		}
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}

// overlapWindow collects trailing sentences up to the configured
// overlap size in characters.
func (c *Chunker) overlapWindow(sentences []string) string {
	if c.chunkOverlap <= 0 || len(sentences) == 0 {
		return ""
	}

	var overlap string
	overlapChars := 0

	for i := len(sentences) - 1; i >= 0; i-- {
		sentence := sentences[i]
		if overlapChars+len(sentence) > c.chunkOverlap {
			break
		}
		if overlap == "" {
			overlap = sentence
		} else {
			overlap = sentence + " " + overlap
		}
		overlapChars += len(sentence)
	}

	return overlap
}
