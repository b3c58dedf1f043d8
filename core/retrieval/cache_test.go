package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/model"
)

func TestSearchCache(t *testing.T) {
	t.Run("Put then get returns the same response", func(t *testing.T) {
		cache := NewSearchCache()
		response := &model.SearchResponse{SearchID: "id-1", Query: "alice", TotalResults: 2}

		cache.Put(response)

		cached, ok := cache.Get("id-1")
		require.True(t, ok)
		assert.Same(t, response, cached)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("Unknown id misses", func(t *testing.T) {
		cache := NewSearchCache()

		_, ok := cache.Get("nope")

		assert.False(t, ok)
	})

	t.Run("Entries are keyed by search id", func(t *testing.T) {
		cache := NewSearchCache()
		cache.Put(&model.SearchResponse{SearchID: "a", Query: "first"})
		cache.Put(&model.SearchResponse{SearchID: "b", Query: "second"})

		first, ok := cache.Get("a")
		require.True(t, ok)
		second, ok := cache.Get("b")
		require.True(t, ok)

		assert.Equal(t, "first", first.Query)
		assert.Equal(t, "second", second.Query)
		assert.Equal(t, 2, cache.Len())
	})
}
