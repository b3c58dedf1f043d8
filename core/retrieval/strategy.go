package retrieval

import (
	"fmt"
	"strings"

	"github.com/docchat/docchat/llm"
	"github.com/docchat/docchat/model"
)

// contextBlocks is the gathered context for one answer, separated by
// retrieval tier. Which blocks are filled depends on the strategy and
// on which collections returned hits.
type contextBlocks struct {
	chunks     []string
	summaries  []string
	paragraphs []string
}

// composePrompt builds the message list for the strategy. Strategies
// with an empty secondary tier degrade to the basic composition.
func composePrompt(strategy model.SearchStrategy, question string, blocks contextBlocks, conversationHistory string) []llm.Message {
	switch strategy {
	case model.StrategyEnhanced:
		if len(blocks.summaries) > 0 {
			return composeEnhancedPrompt(question, blocks, conversationHistory)
		}
	case model.StrategyParagraph:
		if len(blocks.paragraphs) > 0 {
			return composeParagraphPrompt(question, blocks, conversationHistory)
		}
	}
	return composeBasicPrompt(question, blocks, conversationHistory)
}

func composeBasicPrompt(question string, blocks contextBlocks, conversationHistory string) []llm.Message {
	system := "You are a helpful assistant that answers questions based on provided context. " +
		"If the context doesn't contain enough information to answer the question, " +
		"say so clearly. Always be accurate and cite the information from the context."
	system = withHistoryNote(system, conversationHistory)

	context := strings.Join(blocks.chunks, "\n\n")
	user := fmt.Sprintf("%sContext:\n%s\n\nQuestion: %s\n\nAnswer:", historyBlock(conversationHistory), context, question)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
}

func composeEnhancedPrompt(question string, blocks contextBlocks, conversationHistory string) []llm.Message {
	system := "Use both detailed chunks and logical summaries to provide comprehensive answers. " +
		"Summaries give broader context, chunks provide specific details."
	system = withHistoryNote(system, conversationHistory)

	chunkContext := strings.Join(blocks.chunks, "\n\n")

	tagged := make([]string, 0, len(blocks.summaries))
	for _, summary := range blocks.summaries {
		tagged = append(tagged, "Summary: "+summary)
	}
	summaryContext := strings.Join(tagged, "\n\n")

	combined := fmt.Sprintf("Detailed Chunks:\n%s\n\nLogical Summaries:\n%s", chunkContext, summaryContext)
	user := fmt.Sprintf("%sContext:\n%s\n\nQuestion: %s\n\nAnswer:", historyBlock(conversationHistory), combined, question)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
}

func composeParagraphPrompt(question string, blocks contextBlocks, conversationHistory string) []llm.Message {
	system := "Use both detailed information and wider paragraph context to provide comprehensive answers. " +
		"Paragraph summaries give broader context and themes, detailed information provides specific facts."
	system = withHistoryNote(system, conversationHistory)

	chunkContext := strings.Join(blocks.chunks, "\n\n")

	tagged := make([]string, 0, len(blocks.paragraphs))
	for _, paragraph := range blocks.paragraphs {
		tagged = append(tagged, "Paragraph Context: "+paragraph)
	}
	paragraphContext := strings.Join(tagged, "\n\n")

	combined := fmt.Sprintf("Detailed Information:\n%s\n\nWider Context (Paragraph Summaries):\n%s", chunkContext, paragraphContext)
	user := fmt.Sprintf("%sContext:\n%s\n\nQuestion: %s\n\nAnswer using both the detailed information and broader paragraph context:", historyBlock(conversationHistory), combined, question)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
}

// composeLocationAwarePrompt is used by the chunk-metadata search
// path. Each context block carries a source location tag and the
// model is told to cite those locations.
func composeLocationAwarePrompt(question string, taggedChunks []string, conversationHistory string) []llm.Message {
	system := "You are a helpful assistant that answers questions based on provided context. " +
		"Each source includes location information in brackets. " +
		"When referencing information, mention the specific location (page, section) when available. " +
		"If the context doesn't contain enough information to answer the question, " +
		"say so clearly. Always be accurate and cite the information from the context."
	system = withHistoryNote(system, conversationHistory)

	context := strings.Join(taggedChunks, "\n---\n")
	user := fmt.Sprintf("%sContext with location information:\n%s\n\nQuestion: %s\n\nAnswer the question and reference specific locations when mentioning information:", historyBlock(conversationHistory), context, question)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}
}

func withHistoryNote(system string, conversationHistory string) string {
	if strings.TrimSpace(conversationHistory) == "" {
		return system
	}
	return system + " Previous conversation turns are included so you can resolve references like pronouns across turns."
}

func historyBlock(conversationHistory string) string {
	if strings.TrimSpace(conversationHistory) == "" {
		return ""
	}
	return fmt.Sprintf("Conversation history:\n%s\n\n", strings.TrimSpace(conversationHistory))
}
