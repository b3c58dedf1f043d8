package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressionStrategyRatio(t *testing.T) {
	assert.Equal(t, 8.0, StrategyDetailed.Ratio())
	assert.Equal(t, 10.0, StrategyBalanced.Ratio())
	assert.Equal(t, 15.0, StrategyAggressive.Ratio())
	assert.Equal(t, 10.0, StrategyNoCompression.Ratio(), "Unlisted strategies use the default ratio")
}
