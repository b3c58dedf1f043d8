// Package hugot provides a local embedder backed by an ONNX sentence
// transformer model, with no external API dependency.
package hugot

import (
	"context"
	"fmt"

	"github.com/knights-analytics/hugot"

	"github.com/docchat/docchat/helper"
)

// DefaultModel is the all-MiniLM-L6-v2 sentence transformer,
// producing 384-dimensional embeddings.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

// Embedder generates embeddings locally through a hugot pipeline.
// The pipeline is captured in a closure built at construction time.
type Embedder struct {
	session *hugot.Session
	embed   func(text string) ([]float32, error)
}

// NewEmbedder downloads the model if needed and initializes a hugot
// session with the Go backend.
func NewEmbedder(modelName string) (*Embedder, error) {
	if modelName == "" {
		modelName = DefaultModel
	}

	modelPath, err := helper.PrepareModel(modelName)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	embed := func(text string) ([]float32, error) {
		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return result.Embeddings[0], nil
	}

	return &Embedder{session: session, embed: embed}, nil
}

// Embed generates an embedding for the given text
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text)
}

// Close destroys the underlying hugot session
func (e *Embedder) Close() error {
	return e.session.Destroy()
}
