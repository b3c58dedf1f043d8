package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/model"
	"github.com/docchat/docchat/store"
)

func seededCollection(t *testing.T) store.Collection {
	t.Helper()

	s := NewStore()
	collection, err := s.GetOrCreateCollection(context.Background(), "documents")
	require.NoError(t, err)

	err = collection.Add(context.Background(),
		[]string{"a", "b", "c"},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0.9, 0.1, 0}},
		[]string{"first", "second", "third"},
		[]model.Metadata{
			{"filename": "alice.txt", "chunk_index": 0},
			{"filename": "moby.txt", "chunk_index": 0},
			{"filename": "alice.txt", "chunk_index": 1},
		},
	)
	require.NoError(t, err)
	return collection
}

func TestStoreCollections(t *testing.T) {
	ctx := context.Background()

	t.Run("GetOrCreateCollection returns the same collection per name", func(t *testing.T) {
		s := NewStore()
		first, err := s.GetOrCreateCollection(ctx, "documents")
		require.NoError(t, err)
		second, err := s.GetOrCreateCollection(ctx, "documents")
		require.NoError(t, err)

		assert.Same(t, first, second)
	})

	t.Run("Empty collection name rejected", func(t *testing.T) {
		s := NewStore()
		_, err := s.GetOrCreateCollection(ctx, "")
		assert.Error(t, err)
	})

	t.Run("ListCollections returns sorted names", func(t *testing.T) {
		s := NewStore()
		for _, name := range []string{"paragraph_summaries", "documents", "logical_summaries"} {
			_, err := s.GetOrCreateCollection(ctx, name)
			require.NoError(t, err)
		}

		names, err := s.ListCollections(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"documents", "logical_summaries", "paragraph_summaries"}, names)
	})
}

func TestCollectionAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("Mismatched slice lengths rejected", func(t *testing.T) {
		s := NewStore()
		collection, err := s.GetOrCreateCollection(ctx, "documents")
		require.NoError(t, err)

		err = collection.Add(ctx, []string{"a", "b"}, [][]float32{{1}}, []string{"x", "y"}, []model.Metadata{{}, {}})
		assert.Error(t, err)
	})

	t.Run("Adding an existing id overwrites the record", func(t *testing.T) {
		collection := seededCollection(t)

		err := collection.Add(ctx, []string{"a"}, [][]float32{{1, 0, 0}}, []string{"replaced"}, []model.Metadata{{"filename": "alice.txt"}})
		require.NoError(t, err)

		count, err := collection.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		records, err := collection.Get(ctx, []string{"a"}, nil, 0)
		require.NoError(t, err)
		require.Equal(t, 1, len(records))
		assert.Equal(t, "replaced", records[0].Document)
	})
}

func TestCollectionQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("Results ordered by ascending distance", func(t *testing.T) {
		collection := seededCollection(t)

		matches, err := collection.Query(ctx, []float32{1, 0, 0}, 10, nil)

		require.NoError(t, err)
		require.Equal(t, 3, len(matches))
		assert.Equal(t, "a", matches[0].ID, "Identical vector is closest")
		assert.Equal(t, "c", matches[1].ID)
		assert.Equal(t, "b", matches[2].ID, "Orthogonal vector is farthest")
		assert.InDelta(t, 0.0, matches[0].Distance, 0.0001)
		assert.InDelta(t, 1.0, matches[2].Distance, 0.0001)
	})

	t.Run("Result count limited", func(t *testing.T) {
		collection := seededCollection(t)

		matches, err := collection.Query(ctx, []float32{1, 0, 0}, 2, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, len(matches))
	})

	t.Run("String filter requires equality", func(t *testing.T) {
		collection := seededCollection(t)

		matches, err := collection.Query(ctx, []float32{1, 0, 0}, 10, map[string]interface{}{"filename": "moby.txt"})

		require.NoError(t, err)
		require.Equal(t, 1, len(matches))
		assert.Equal(t, "b", matches[0].ID)
	})

	t.Run("List filter requires membership", func(t *testing.T) {
		collection := seededCollection(t)

		matches, err := collection.Query(ctx, []float32{1, 0, 0}, 10, map[string]interface{}{"filename": []string{"alice.txt"}})

		require.NoError(t, err)
		require.Equal(t, 2, len(matches))
		for _, match := range matches {
			assert.Equal(t, "alice.txt", match.Metadata.String("filename", ""))
		}
	})

	t.Run("Empty embedding rejected", func(t *testing.T) {
		collection := seededCollection(t)
		_, err := collection.Query(ctx, nil, 10, nil)
		assert.Error(t, err)
	})
}

func TestCollectionGet(t *testing.T) {
	ctx := context.Background()

	t.Run("Get by ids returns matching records in id order", func(t *testing.T) {
		collection := seededCollection(t)

		records, err := collection.Get(ctx, []string{"c", "a"}, nil, 0)

		require.NoError(t, err)
		require.Equal(t, 2, len(records))
		assert.Equal(t, "a", records[0].ID)
		assert.Equal(t, "c", records[1].ID)
	})

	t.Run("Get by filter with limit", func(t *testing.T) {
		collection := seededCollection(t)

		records, err := collection.Get(ctx, nil, map[string]interface{}{"filename": "alice.txt"}, 1)

		require.NoError(t, err)
		require.Equal(t, 1, len(records))
		assert.Equal(t, "alice.txt", records[0].Metadata.String("filename", ""))
	})

	t.Run("Unknown ids yield no records", func(t *testing.T) {
		collection := seededCollection(t)

		records, err := collection.Get(ctx, []string{"nope"}, nil, 0)

		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestCollectionDelete(t *testing.T) {
	ctx := context.Background()
	collection := seededCollection(t)

	err := collection.Delete(ctx, []string{"a", "b"})
	require.NoError(t, err)

	count, err := collection.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	records, err := collection.Get(ctx, nil, nil, 0)
	require.NoError(t, err)
	require.Equal(t, 1, len(records))
	assert.Equal(t, "c", records[0].ID)
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0.0, cosineDistance([]float32{1, 2, 3}, []float32{1, 2, 3}), 0.0001)
	assert.InDelta(t, 1.0, cosineDistance([]float32{1, 0}, []float32{0, 1}), 0.0001)
	assert.InDelta(t, 2.0, cosineDistance([]float32{1, 0}, []float32{-1, 0}), 0.0001)
	assert.Equal(t, 1.0, cosineDistance([]float32{1, 0}, []float32{1}), "Dimension mismatch counts as unrelated")
	assert.Equal(t, 1.0, cosineDistance([]float32{0, 0}, []float32{1, 0}), "Zero vector counts as unrelated")
}
