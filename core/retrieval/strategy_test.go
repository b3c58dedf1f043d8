package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/llm"
	"github.com/docchat/docchat/model"
)

func TestComposePrompt(t *testing.T) {
	blocks := contextBlocks{
		chunks:     []string{"Alice met the Cheshire Cat.", "The Queen ordered a croquet game."},
		summaries:  []string{"Alice explores Wonderland."},
		paragraphs: []string{"The story follows Alice through a dream world."},
	}

	t.Run("Basic strategy uses chunks only", func(t *testing.T) {
		messages := composePrompt(model.StrategyBasic, "Who did Alice meet?", blocks, "")

		require.Equal(t, 2, len(messages))
		assert.Equal(t, llm.RoleSystem, messages[0].Role)
		assert.Equal(t, llm.RoleUser, messages[1].Role)
		assert.Contains(t, messages[1].Content, "Alice met the Cheshire Cat.")
		assert.NotContains(t, messages[1].Content, "Logical Summaries")
		assert.NotContains(t, messages[1].Content, "Paragraph Summaries")
	})

	t.Run("Enhanced strategy tags summaries", func(t *testing.T) {
		messages := composePrompt(model.StrategyEnhanced, "Who did Alice meet?", blocks, "")

		require.Equal(t, 2, len(messages))
		assert.Contains(t, messages[1].Content, "Detailed Chunks:")
		assert.Contains(t, messages[1].Content, "Logical Summaries:")
		assert.Contains(t, messages[1].Content, "Summary: Alice explores Wonderland.")
	})

	t.Run("Paragraph strategy tags paragraph context", func(t *testing.T) {
		messages := composePrompt(model.StrategyParagraph, "Who did Alice meet?", blocks, "")

		require.Equal(t, 2, len(messages))
		assert.Contains(t, messages[1].Content, "Detailed Information:")
		assert.Contains(t, messages[1].Content, "Wider Context (Paragraph Summaries):")
		assert.Contains(t, messages[1].Content, "Paragraph Context: The story follows Alice")
	})

	t.Run("Enhanced without summaries degrades to basic", func(t *testing.T) {
		chunksOnly := contextBlocks{chunks: blocks.chunks}
		messages := composePrompt(model.StrategyEnhanced, "Who did Alice meet?", chunksOnly, "")

		require.Equal(t, 2, len(messages))
		assert.NotContains(t, messages[1].Content, "Logical Summaries")
		assert.Contains(t, messages[1].Content, "Alice met the Cheshire Cat.")
	})

	t.Run("Paragraph without paragraph summaries degrades to basic", func(t *testing.T) {
		chunksOnly := contextBlocks{chunks: blocks.chunks}
		messages := composePrompt(model.StrategyParagraph, "Who did Alice meet?", chunksOnly, "")

		require.Equal(t, 2, len(messages))
		assert.NotContains(t, messages[1].Content, "Wider Context")
	})

	t.Run("Conversation history prefixes the user message", func(t *testing.T) {
		messages := composePrompt(model.StrategyBasic, "And then?", blocks, "User: Who did Alice meet?\nAssistant: The Cheshire Cat.")

		require.Equal(t, 2, len(messages))
		assert.Contains(t, messages[0].Content, "Previous conversation turns")
		assert.Contains(t, messages[1].Content, "Conversation history:\nUser: Who did Alice meet?")
	})

	t.Run("Blank history leaves the prompt untouched", func(t *testing.T) {
		messages := composePrompt(model.StrategyBasic, "Who did Alice meet?", blocks, "   ")

		assert.NotContains(t, messages[0].Content, "Previous conversation turns")
		assert.NotContains(t, messages[1].Content, "Conversation history:")
	})
}

func TestComposeLocationAwarePrompt(t *testing.T) {
	tagged := []string{
		"[Source: Page 3, Section: Chapter 1, Paragraph 2]\nAlice met the Cheshire Cat.\n[Summary: Alice meets the cat]\n",
		"[Source: Page 7, Section: Chapter 2, Paragraph 1]\nThe Queen ordered a croquet game.\n[Summary: The croquet game]\n",
	}

	messages := composeLocationAwarePrompt("Who did Alice meet?", tagged, "")

	require.Equal(t, 2, len(messages))
	assert.Contains(t, messages[0].Content, "location information in brackets")
	assert.Contains(t, messages[1].Content, "[Source: Page 3, Section: Chapter 1, Paragraph 2]")
	assert.Contains(t, messages[1].Content, "\n---\n", "Blocks are separated by a divider")
}
