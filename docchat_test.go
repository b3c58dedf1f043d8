package docchat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/llm"
	"github.com/docchat/docchat/model"
	"github.com/docchat/docchat/store/memory"
)

const testDocument = `The Expedition Begins

Dr. Carter assembled her team at dawn. The research vessel had been prepared for months and every instrument was calibrated twice. However, the weather forecast worried the navigator because storms had been building off the coast all week.

The first day at sea went smoothly. The crew collected water samples every two hours and logged the readings carefully. Meanwhile, the sonar team mapped the ridge below the ship and marked several formations for closer study.

Procedure for sample collection: follow these steps carefully. First, lower the sampling bottle to the target depth. Then close the bottle using the messenger weight. Next, retrieve the bottle and transfer the water to a sterile container. Finally, label the container with the exact time, depth and coordinates of the collection.`

func newTestDocChat() *DocChat {
	return NewDocChat(memory.NewStore(), llm.NewDemoClient(64), model.DefaultProcessingConfig())
}

func TestProcessDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates chunks and reports success", func(t *testing.T) {
		docChat := newTestDocChat()

		result := docChat.ProcessDocument(ctx, testDocument, "expedition.txt")

		assert.Equal(t, model.StatusSuccess, result.Status)
		assert.Equal(t, "expedition.txt", result.Filename)
		assert.Greater(t, result.ChunksCreated, 0)

		collection, err := docChat.Engine.Collection(ctx, "documents")
		require.NoError(t, err)
		count, err := collection.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, result.ChunksCreated, count)
	})

	t.Run("Empty text reports an error result", func(t *testing.T) {
		docChat := newTestDocChat()

		result := docChat.ProcessDocument(ctx, "   ", "empty.txt")

		assert.Equal(t, model.StatusError, result.Status)
		assert.Contains(t, result.Message, "No extractable text found in empty.txt")
	})

	t.Run("Reprocessing the same text does not duplicate chunks", func(t *testing.T) {
		docChat := newTestDocChat()

		first := docChat.ProcessDocument(ctx, testDocument, "expedition.txt")
		second := docChat.ProcessDocument(ctx, testDocument, "expedition.txt")

		assert.Equal(t, first.ChunksCreated, second.ChunksCreated)

		collection, err := docChat.Engine.Collection(ctx, "documents")
		require.NoError(t, err)
		count, err := collection.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ChunksCreated, count, "Identical content hashes make re-processing idempotent")
	})

	t.Run("Stores the original text for later processing", func(t *testing.T) {
		docChat := newTestDocChat()
		docChat.ProcessDocument(ctx, testDocument, "expedition.txt")

		text, err := docChat.Engine.OriginalText(ctx, "expedition.txt")
		require.NoError(t, err)
		assert.Equal(t, testDocument, text)
	})
}

func TestProcessDocumentHierarchically(t *testing.T) {
	ctx := context.Background()

	t.Run("Groups and compresses a processed document", func(t *testing.T) {
		docChat := newTestDocChat()
		docChat.ProcessDocument(ctx, testDocument, "expedition.txt")

		result := docChat.ProcessDocumentHierarchically(ctx, "expedition.txt")

		assert.Equal(t, model.StatusSuccess, result.Status)
		assert.Greater(t, result.LogicalGroupsCreated, 0)
		assert.Equal(t, result.LogicalGroupsCreated, len(result.Groups))
		assert.Equal(t, result.SummariesCreated, len(result.Groups))
		assert.Greater(t, result.CompressionStats.TotalInputWords, 0)

		collection, err := docChat.Engine.Collection(ctx, "logical_summaries")
		require.NoError(t, err)
		count, err := collection.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, result.SummariesCreated, count)
	})

	t.Run("Unknown document reports an error result", func(t *testing.T) {
		docChat := newTestDocChat()

		result := docChat.ProcessDocumentHierarchically(ctx, "missing.txt")

		assert.Equal(t, model.StatusError, result.Status)
		assert.Contains(t, result.Message, "Could not find document text for missing.txt")
		assert.Empty(t, result.Groups)
	})
}

func TestProcessDocumentParagraphs(t *testing.T) {
	ctx := context.Background()

	t.Run("Summarizes stored paragraphs", func(t *testing.T) {
		docChat := newTestDocChat()
		docChat.ProcessDocument(ctx, testDocument, "expedition.txt")

		result := docChat.ProcessDocumentParagraphs(ctx, "expedition.txt")

		assert.Equal(t, model.StatusSuccess, result.Status)
		assert.Greater(t, result.ParagraphsProcessed, 0)
		assert.Equal(t, result.ParagraphsProcessed, len(result.Paragraphs))
		for _, paragraph := range result.Paragraphs {
			assert.True(t, strings.HasPrefix(paragraph.ParagraphID, "expedition.txt_para_"))
			assert.NotEmpty(t, paragraph.Summary)
		}

		collection, err := docChat.Engine.Collection(ctx, "paragraph_summaries")
		require.NoError(t, err)
		count, err := collection.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, result.SummariesCreated, count)
	})

	t.Run("Unknown document reports an error result", func(t *testing.T) {
		docChat := newTestDocChat()

		result := docChat.ProcessDocumentParagraphs(ctx, "missing.txt")

		assert.Equal(t, model.StatusError, result.Status)
		assert.Empty(t, result.Paragraphs)
	})
}

func TestSearchAndAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("Search finds stored chunks", func(t *testing.T) {
		docChat := newTestDocChat()
		docChat.ProcessDocument(ctx, testDocument, "expedition.txt")

		response, err := docChat.Search(ctx, model.SearchRequest{Query: "water samples", TopK: 3})

		require.NoError(t, err)
		assert.Greater(t, response.TotalResults, 0)
		assert.Equal(t, []string{"expedition.txt"}, response.UniqueDocuments)
		assert.NotEmpty(t, response.SearchID)
	})

	t.Run("Ask reuses a previous search by id", func(t *testing.T) {
		docChat := newTestDocChat()
		docChat.ProcessDocument(ctx, testDocument, "expedition.txt")

		search, err := docChat.Search(ctx, model.SearchRequest{Query: "water samples", TopK: 3})
		require.NoError(t, err)

		answer, err := docChat.Ask(ctx, model.AskRequest{
			Question: "How are samples collected?",
			SearchID: search.SearchID,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, answer.Answer)
		assert.Contains(t, answer.Sources, "expedition.txt")
	})

	t.Run("Ask without any documents returns the fixed answer", func(t *testing.T) {
		docChat := newTestDocChat()

		answer, err := docChat.Ask(ctx, model.AskRequest{Question: "Anything?", SearchStrategy: model.StrategyBasic})

		require.NoError(t, err)
		assert.Equal(t, "No relevant documents found. Please upload some documents first.", answer.Answer)
		assert.Empty(t, answer.Sources)
	})

	t.Run("Location aware search cites chunk locations", func(t *testing.T) {
		docChat := newTestDocChat()
		docChat.ProcessDocument(ctx, testDocument, "expedition.txt")

		response, err := docChat.SearchWithLocationInfo(ctx, "sample collection", 2, "")

		require.NoError(t, err)
		require.NotEmpty(t, response.Sources)
		assert.Contains(t, response.Sources[0], "expedition.txt (")
	})
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	docChat := newTestDocChat()

	docChat.ProcessDocument(ctx, testDocument, "expedition.txt")
	docChat.ProcessDocument(ctx, "Another document with enough text to produce at least one chunk of content.", "notes.txt")

	status, err := docChat.Status(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, status.Documents)
	assert.Equal(t, []string{"expedition.txt", "notes.txt"}, status.Filenames)
	assert.GreaterOrEqual(t, status.Collections, 2)
}
