// Package pipeline implements the document processing stages: sentence
// splitting, logical grouping, adaptive compression, paragraph
// summarization and chunk building with metadata.
package pipeline

import (
	"regexp"
	"strings"
)

// Abbreviations that should not terminate a sentence
var abbreviations = []string{
	"Dr.", "Mr.", "Mrs.", "Ms.", "Prof.", "vs.", "etc.",
	"i.e.", "e.g.", "cf.", "al.", "Inc.", "Ltd.", "Corp.",
	"St.", "Ave.", "Blvd.", "Dept.", "Fig.", "Vol.", "No.",
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	paragraphPattern  = regexp.MustCompile(`\n\s*\n`)
)

// NormalizeWhitespace collapses all whitespace runs into single spaces
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// WordCount returns the number of whitespace separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// SplitSentences splits text into sentences at ., ! and ? followed by
// whitespace. A period closing a known abbreviation never terminates a
// sentence, so "Dr. Smith went home." stays one sentence and an
// abbreviation-ended fragment is merged with its continuation.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i < len(runes)-1 && runes[i+1] != ' ' && runes[i+1] != '\n' && runes[i+1] != '\t' {
			continue
		}
		if r == '.' && endsWithAbbreviation(current.String()) {
			continue
		}

		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	if remainder := strings.TrimSpace(current.String()); remainder != "" {
		sentences = append(sentences, remainder)
	}

	return sentences
}

func endsWithAbbreviation(sentence string) bool {
	trimmed := strings.TrimRight(sentence, " ")
	for _, abbreviation := range abbreviations {
		if !strings.HasSuffix(trimmed, abbreviation) {
			continue
		}
		// The abbreviation must be a whole token, "tropical." is not "al."
		if len(trimmed) == len(abbreviation) || trimmed[len(trimmed)-len(abbreviation)-1] == ' ' {
			return true
		}
	}
	return false
}

// SplitParagraphs splits text on blank lines, normalizes whitespace
// and drops paragraphs under minLength characters.
func SplitParagraphs(text string, minLength int) []string {
	blocks := paragraphPattern.Split(strings.TrimSpace(text), -1)

	var paragraphs []string
	for _, block := range blocks {
		paragraph := NormalizeWhitespace(block)
		if len(paragraph) > minLength {
			paragraphs = append(paragraphs, paragraph)
		}
	}
	return paragraphs
}
