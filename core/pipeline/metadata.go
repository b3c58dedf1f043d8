package pipeline

import (
	"crypto/md5"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/docchat/docchat/model"
)

var pagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Page\s+(\d+)`),
	regexp.MustCompile(`(?i)\[Page\s+(\d+)\]`),
}

var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^#{1,6}\s+(.+)$`),
	regexp.MustCompile(`^([A-Z][A-Z\s]{2,})$`),
	regexp.MustCompile(`^\d+\.\s+(.+)$`),
	regexp.MustCompile(`(?i)^Chapter\s+\d+:?\s*(.*)$`),
	regexp.MustCompile(`^\*\*(.+)\*\*$`),
}

var (
	numberedListPattern = regexp.MustCompile(`(?s)\d+\.\s+.*\d+\.\s+.*\d+\.\s+`)
	bulletListPattern   = regexp.MustCompile(`(?s)[•\-\*]\s+.*[•\-\*]\s+`)
)

// Content type classification as an ordered first-match-wins list
var contentTypeChecks = []struct {
	matches func(text, lower string) bool
	label   model.ContentType
}{
	{
		matches: func(text, lower string) bool { return numberedListPattern.MatchString(text) },
		label:   model.ContentTypeNumberedList,
	},
	{
		matches: func(text, lower string) bool { return bulletListPattern.MatchString(text) },
		label:   model.ContentTypeBulletList,
	},
	{
		matches: func(text, lower string) bool { return containsAny(lower, "table", "column", "row") },
		label:   model.ContentTypeTable,
	},
	{
		matches: func(text, lower string) bool { return containsAny(lower, "figure", "chart", "graph", "image") },
		label:   model.ContentTypeFigureReference,
	},
	{
		matches: func(text, lower string) bool {
			return containsAny(lower, "introduction", "overview", "summary", "conclusion")
		},
		label: model.ContentTypeSummary,
	},
	{
		matches: func(text, lower string) bool { return containsAny(lower, "step", "procedure", "method", "process") },
		label:   model.ContentTypeProcedural,
	},
	{
		matches: func(text, lower string) bool { return strings.Count(text, "?") > 2 },
		label:   model.ContentTypeFAQ,
	},
}

func containsAny(text string, substrings ...string) bool {
	for _, substring := range substrings {
		if strings.Contains(text, substring) {
			return true
		}
	}
	return false
}

// MetadataExtractor annotates chunks with position, section, page,
// content type and key term metadata.
type MetadataExtractor struct{}

// ExtractPagePositions maps character positions to page numbers
func (e *MetadataExtractor) ExtractPagePositions(text string) map[int]int {
	positions := map[int]int{}
	for _, pattern := range pagePatterns {
		for _, match := range pattern.FindAllStringSubmatchIndex(text, -1) {
			page, err := strconv.Atoi(text[match[2]:match[3]])
			if err != nil {
				continue
			}
			positions[match[0]] = page
		}
	}
	return positions
}

// ExtractSectionPositions maps character positions to section titles
func (e *MetadataExtractor) ExtractSectionPositions(text string) map[int]string {
	positions := map[int]string{}

	charPosition := 0
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		for _, pattern := range sectionPatterns {
			match := pattern.FindStringSubmatch(stripped)
			if match != nil {
				title := strings.TrimSpace(match[1])
				if len(title) > 3 {
					positions[charPosition] = title
				}
				break
			}
		}
		charPosition += len(line) + 1
	}

	return positions
}

// PositionMetadata returns the page number, section title and
// paragraph number for a character position, taking the closest
// preceding entry of each position map.
func (e *MetadataExtractor) PositionMetadata(text string, position int, pagePositions map[int]int, sectionPositions map[int]string) (*int, *string, int) {
	var pageNumber *int
	bestPagePos := -1
	for pos, page := range pagePositions {
		if pos <= position && pos > bestPagePos {
			bestPagePos = pos
			pageNumber = &page
		}
	}

	var sectionTitle *string
	bestSectionPos := -1
	for pos, title := range sectionPositions {
		if pos <= position && pos > bestSectionPos {
			bestSectionPos = pos
			sectionTitle = &title
		}
	}

	paragraphNumber := strings.Count(text[:position], "\n\n") + 1

	return pageNumber, sectionTitle, paragraphNumber
}

// ChunkSummary generates a short extractive blurb from the chunk's
// leading sentences, capped at maxLength characters.
func (e *MetadataExtractor) ChunkSummary(chunkText string, maxLength int) string {
	clean := NormalizeWhitespace(chunkText)

	var sentences []string
	for _, part := range strings.Split(clean, ".") {
		part = strings.TrimSpace(part)
		if len(part) > 10 {
			sentences = append(sentences, part)
		}
	}

	var summary string
	if len(sentences) > 0 {
		summary = sentences[0]
		if len(summary) < 50 && len(sentences) > 1 {
			summary += ". " + sentences[1]
		}
	} else if len(clean) > maxLength {
		summary = clean[:maxLength]
	} else {
		summary = clean
	}

	if len(summary) > maxLength {
		summary = summary[:maxLength-3] + "..."
	}

	return summary
}

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// KeyTerms extracts up to maxTerms key terms, capitalized tokens and
// long tokens ranked by in-chunk frequency.
func (e *MetadataExtractor) KeyTerms(chunkText string, maxTerms int) []string {
	words := strings.Fields(nonWordPattern.ReplaceAllString(chunkText, " "))

	candidates := map[string]bool{}
	for _, word := range words {
		runes := []rune(word)
		if len(runes) > 2 && unicode.IsUpper(runes[0]) {
			candidates[word] = true
		}
		if len(runes) > 6 {
			candidates[strings.ToLower(word)] = true
		}
	}

	lower := strings.ToLower(chunkText)
	type termFreq struct {
		term string
		freq int
	}
	frequencies := make([]termFreq, 0, len(candidates))
	for term := range candidates {
		frequencies = append(frequencies, termFreq{term: term, freq: strings.Count(lower, strings.ToLower(term))})
	}

	sort.SliceStable(frequencies, func(i, j int) bool {
		if frequencies[i].freq != frequencies[j].freq {
			return frequencies[i].freq > frequencies[j].freq
		}
		return frequencies[i].term < frequencies[j].term
	})

	terms := []string{}
	for _, entry := range frequencies {
		if len(terms) >= maxTerms {
			break
		}
		terms = append(terms, entry.term)
	}
	return terms
}

// ContentType classifies the chunk by the first matching check
func (e *MetadataExtractor) ContentType(chunkText string) model.ContentType {
	lower := strings.ToLower(chunkText)
	for _, check := range contentTypeChecks {
		if check.matches(chunkText, lower) {
			return check.label
		}
	}
	return model.ContentTypeGeneral
}

// ChunkHash returns a 12 character content fingerprint
func ChunkHash(chunkText string) string {
	sum := md5.Sum([]byte(chunkText))
	return fmt.Sprintf("%x", sum)[:12]
}

// DocumentProcessor combines the chunker and metadata extractor into
// the full chunk building stage.
type DocumentProcessor struct {
	chunker   *Chunker
	extractor *MetadataExtractor
	logger    *slog.Logger
}

// NewDocumentProcessor creates a processor with the given processing configuration
func NewDocumentProcessor(config model.ProcessingConfig, logger *slog.Logger) *DocumentProcessor {
	return &DocumentProcessor{
		chunker:   NewChunker(config),
		extractor: &MetadataExtractor{},
		logger:    logger,
	}
}

// ProcessText splits the document text into annotated chunks
func (p *DocumentProcessor) ProcessText(text string, filename string) []model.ChunkWithMetadata {
	pagePositions := p.extractor.ExtractPagePositions(text)
	sectionPositions := p.extractor.ExtractSectionPositions(text)

	textChunks := p.chunker.SplitText(text)

	chunks := make([]model.ChunkWithMetadata, 0, len(textChunks))
	searchFrom := 0

	for i, chunkText := range textChunks {
		chunkStart := locateChunk(text, chunkText, searchFrom)

		chunkEnd := chunkStart + len(chunkText)
		if chunkEnd > len(text) {
			chunkEnd = len(text)
		}

		// Overlapping chunks start before the previous chunk's end, so
		// only advance past the previous start position.
		searchFrom = chunkStart + 1

		pageNumber, sectionTitle, paragraphNumber := p.extractor.PositionMetadata(text, chunkStart, pagePositions, sectionPositions)

		chunks = append(chunks, model.ChunkWithMetadata{
			Text: chunkText,
			Metadata: model.ChunkMetadata{
				Filename:        filename,
				ChunkIndex:      i,
				TotalChunks:     len(textChunks),
				ChunkSize:       len(chunkText),
				ChunkSummary:    p.extractor.ChunkSummary(chunkText, 120),
				PageNumber:      pageNumber,
				SectionTitle:    sectionTitle,
				StartChar:       chunkStart,
				EndChar:         chunkEnd,
				ParagraphNumber: paragraphNumber,
				ContentType:     p.extractor.ContentType(chunkText),
				KeyTerms:        p.extractor.KeyTerms(chunkText, 5),
				ChunkHash:       ChunkHash(chunkText),
			},
		})
	}

	p.logger.Info("Processed document into chunks", "filename", filename, "chunks", len(chunks))

	return chunks
}

// locateChunk finds a chunk's start offset in the source text. Chunk
// text is whitespace normalized, so an exact match can fail; a leading
// fragment serves as a fallback anchor before pinning the chunk at the
// search position. The returned offset is always within the text.
func locateChunk(text string, chunkText string, searchFrom int) int {
	if searchFrom >= len(text) {
		return len(text) - 1
	}

	if index := strings.Index(text[searchFrom:], chunkText); index >= 0 {
		return searchFrom + index
	}

	anchor := chunkText
	if len(anchor) > 40 {
		if cut := strings.LastIndex(anchor[:40], " "); cut > 0 {
			anchor = anchor[:cut]
		} else {
			anchor = anchor[:40]
		}
	}
	if index := strings.Index(text[searchFrom:], anchor); index >= 0 {
		return searchFrom + index
	}

	return searchFrom
}
