package pipeline

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/docchat/docchat/model"
)

// Discourse markers that indicate topic shifts, by category
var topicShiftMarkers = map[string][]string{
	"contrast":  {"however", "but", "although", "nevertheless", "on the other hand"},
	"sequence":  {"first", "second", "next", "then", "finally", "meanwhile"},
	"causation": {"because", "therefore", "as a result", "consequently", "thus"},
	"addition":  {"furthermore", "moreover", "additionally", "also", "besides"},
	"time":      {"suddenly", "immediately", "later", "soon", "eventually"},
	"dialogue":  {"said", "asked", "replied", "exclaimed", "whispered", "shouted"},
}

var shiftPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(suddenly|immediately|meanwhile|later)`),
	regexp.MustCompile(`(chapter \d+|section \d+)`),
}

// SentenceGrouper merges sentences into topically coherent logical groups
type SentenceGrouper struct {
	minSentenceLength   int
	groupWordLimit      int
	similarityThreshold float64
	logger              *slog.Logger
}

// NewSentenceGrouper creates a grouper with the given processing configuration
func NewSentenceGrouper(config model.ProcessingConfig, logger *slog.Logger) *SentenceGrouper {
	return &SentenceGrouper{
		minSentenceLength:   config.MinSentenceLength,
		groupWordLimit:      config.GroupWordLimit,
		similarityThreshold: config.SimilarityThreshold,
		logger:              logger,
	}
}

// GroupText splits text into sentences and merges them into logical
// groups. Groups cover the filtered sentences completely, in order,
// without overlap.
func (g *SentenceGrouper) GroupText(text string) []model.LogicalGroup {
	sentences := g.filterSentences(SplitSentences(text))
	groups := g.groupSentences(sentences)

	g.logger.Info("Grouped sentences into logical units", "sentences", len(sentences), "groups", len(groups))
	return groups
}

// filterSentences drops very short sentences as noise
func (g *SentenceGrouper) filterSentences(sentences []string) []string {
	var clean []string
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > g.minSentenceLength {
			clean = append(clean, sentence)
		}
	}
	return clean
}

func (g *SentenceGrouper) groupSentences(sentences []string) []model.LogicalGroup {
	if len(sentences) == 0 {
		return []model.LogicalGroup{}
	}

	var groups []model.LogicalGroup
	current := []string{sentences[0]}
	groupIndex := 0

	for _, sentence := range sentences[1:] {
		shouldBreak := false

		if detectTopicShift(sentence) {
			shouldBreak = true
		} else if sentenceSimilarity(current[len(current)-1], sentence) < g.similarityThreshold {
			shouldBreak = true
		} else if WordCount(strings.Join(current, " ")) > g.groupWordLimit {
			shouldBreak = true
		}

		if shouldBreak {
			groups = append(groups, newLogicalGroup(current, groupIndex))
			current = []string{sentence}
			groupIndex++
		} else {
			current = append(current, sentence)
		}
	}

	groups = append(groups, newLogicalGroup(current, groupIndex))

	return groups
}

// detectTopicShift reports whether the sentence opens a new topic,
// checked as prefix or whole-word match against the discourse markers.
func detectTopicShift(sentence string) bool {
	lower := strings.ToLower(sentence)

	for _, markers := range topicShiftMarkers {
		for _, marker := range markers {
			if strings.HasPrefix(lower, marker) || strings.Contains(lower, " "+marker+" ") {
				return true
			}
		}
	}

	for _, pattern := range shiftPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}

	return false
}

// sentenceSimilarity is the Jaccard similarity of the word sets
func sentenceSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)

	overlap := 0
	for word := range wordsA {
		if wordsB[word] {
			overlap++
		}
	}

	total := len(wordsA) + len(wordsB) - overlap
	if total == 0 {
		return 0
	}
	return float64(overlap) / float64(total)
}

func wordSet(sentence string) map[string]bool {
	set := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(sentence)) {
		set[word] = true
	}
	return set
}

func newLogicalGroup(sentences []string, groupIndex int) model.LogicalGroup {
	combined := strings.Join(sentences, " ")

	// Coarse informational score, not used for gating
	coherence := 0.7
	if len(sentences) == 1 {
		coherence = 1.0
	}

	return model.LogicalGroup{
		GroupID:         fmt.Sprintf("group_%d", groupIndex),
		Sentences:       sentences,
		CombinedText:    combined,
		TopicIndicators: []string{},
		WordCount:       WordCount(combined),
		CoherenceScore:  coherence,
	}
}
