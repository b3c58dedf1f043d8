package llm

import (
	"context"
	"crypto/md5"
)

// DemoClient is an offline Service implementation. Embeddings are derived
// deterministically from a content hash, completions return a canned answer.
// It exists so examples and tests run without any provider credentials.
type DemoClient struct {
	Dimension int
}

// NewDemoClient creates a demo client producing embeddings of the given dimension
func NewDemoClient(dimension int) *DemoClient {
	if dimension <= 0 {
		dimension = 64
	}
	return &DemoClient{Dimension: dimension}
}

// Embed returns a deterministic pseudo-embedding derived from the text hash
func (c *DemoClient) Embed(ctx context.Context, text string) ([]float32, error) {
	sum := md5.Sum([]byte(text))

	embedding := make([]float32, c.Dimension)
	for i := range embedding {
		// Stretch the 16 hash bytes over the full dimension
		pair := uint16(sum[i%len(sum)])<<8 | uint16(sum[(i+7)%len(sum)])
		embedding[i] = float32(pair) / 65535.0
	}
	return embedding, nil
}

// Complete returns a fixed demo answer
func (c *DemoClient) Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	return "This is a demo response. In production mode, this would be generated by the configured language model based on your documents.", nil
}
