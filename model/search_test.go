package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchStrategy(t *testing.T) {
	t.Run("Empty defaults to enhanced", func(t *testing.T) {
		strategy, err := ParseSearchStrategy("")

		require.NoError(t, err)
		assert.Equal(t, StrategyEnhanced, strategy)
	})

	t.Run("Known strategies parse", func(t *testing.T) {
		for _, name := range []string{"basic", "enhanced", "paragraph"} {
			strategy, err := ParseSearchStrategy(name)

			require.NoError(t, err)
			assert.Equal(t, SearchStrategy(name), strategy)
		}
	})

	t.Run("Unknown strategy rejected", func(t *testing.T) {
		_, err := ParseSearchStrategy("hybrid")
		assert.Error(t, err)
	})
}
