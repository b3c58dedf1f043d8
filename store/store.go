// Package store defines the vector store contract used by the
// processing pipeline and the retrieval engine.
package store

import (
	"context"

	"github.com/docchat/docchat/model"
)

// QueryMatch is a single nearest-neighbour result.
// Distance is a cosine distance, smaller is closer.
type QueryMatch struct {
	ID       string
	Document string
	Metadata model.Metadata
	Distance float64
}

// Record is a stored document with its metadata
type Record struct {
	ID       string
	Document string
	Metadata model.Metadata
}

// Store manages named collections of embedded documents
type Store interface {
	// GetOrCreateCollection returns the named collection, creating it
	// if it does not exist yet.
	GetOrCreateCollection(ctx context.Context, name string) (Collection, error)
	// ListCollections returns the names of all existing collections
	ListCollections(ctx context.Context) ([]string, error)
}

// Collection stores embedded documents and answers similarity queries.
//
// Filters restrict matches by metadata: a string value requires
// equality, a []string value requires membership.
type Collection interface {
	// Add upserts documents with their embeddings and metadata.
	// All slices must have the same length.
	Add(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []model.Metadata) error
	// Query returns up to nResults nearest neighbours of the embedding,
	// ordered by ascending distance.
	Query(ctx context.Context, embedding []float32, nResults int, filter map[string]interface{}) ([]QueryMatch, error)
	// Get returns records by id and/or metadata filter. A zero limit
	// means no limit.
	Get(ctx context.Context, ids []string, filter map[string]interface{}, limit int) ([]Record, error)
	// Delete removes records by id
	Delete(ctx context.Context, ids []string) error
	// Count returns the number of stored records
	Count(ctx context.Context) (int, error)
}

// MatchesFilter reports whether the metadata satisfies the filter.
// String values require equality, []string values require membership.
func MatchesFilter(metadata model.Metadata, filter map[string]interface{}) bool {
	for key, want := range filter {
		have, ok := metadata[key]
		if !ok {
			return false
		}
		switch want := want.(type) {
		case string:
			if have != want {
				return false
			}
		case []string:
			found := false
			for _, candidate := range want {
				if have == candidate {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if have != want {
				return false
			}
		}
	}
	return true
}
