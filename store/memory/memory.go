// Package memory implements an in-memory vector store, mainly for
// examples and tests.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/docchat/docchat/model"
	"github.com/docchat/docchat/store"
)

// Store is an in-memory store.Store implementation
type Store struct {
	mutex       sync.RWMutex
	collections map[string]*Collection
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{collections: map[string]*Collection{}}
}

// GetOrCreateCollection returns the named collection, creating it if needed
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (store.Collection, error) {
	if name == "" {
		return nil, errors.New("collection name must not be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	collection, ok := s.collections[name]
	if !ok {
		collection = &Collection{records: map[string]record{}}
		s.collections[name] = collection
	}
	return collection, nil
}

// ListCollections returns the names of all collections in sorted order
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type record struct {
	embedding []float32
	document  string
	metadata  model.Metadata
}

// Collection is an in-memory store.Collection implementation
type Collection struct {
	mutex   sync.RWMutex
	records map[string]record
}

// Add upserts documents with their embeddings and metadata
func (c *Collection) Add(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []model.Metadata) error {
	if len(ids) != len(embeddings) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return errors.New("ids, embeddings, documents and metadatas must have the same length")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for i, id := range ids {
		c.records[id] = record{
			embedding: embeddings[i],
			document:  documents[i],
			metadata:  metadatas[i],
		}
	}
	return nil
}

// Query returns up to nResults nearest neighbours by cosine distance
func (c *Collection) Query(ctx context.Context, embedding []float32, nResults int, filter map[string]interface{}) ([]store.QueryMatch, error) {
	if len(embedding) == 0 {
		return nil, errors.New("query embedding must not be empty")
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	matches := []store.QueryMatch{}
	for id, rec := range c.records {
		if len(filter) > 0 && !store.MatchesFilter(rec.metadata, filter) {
			continue
		}
		matches = append(matches, store.QueryMatch{
			ID:       id,
			Document: rec.document,
			Metadata: rec.metadata,
			Distance: cosineDistance(embedding, rec.embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if nResults > 0 && len(matches) > nResults {
		matches = matches[:nResults]
	}
	return matches, nil
}

// Get returns records by id and/or metadata filter
func (c *Collection) Get(ctx context.Context, ids []string, filter map[string]interface{}, limit int) ([]store.Record, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}

	allIDs := make([]string, 0, len(c.records))
	for id := range c.records {
		allIDs = append(allIDs, id)
	}
	sort.Strings(allIDs)

	records := []store.Record{}
	for _, id := range allIDs {
		if len(wanted) > 0 && !wanted[id] {
			continue
		}
		rec := c.records[id]
		if len(filter) > 0 && !store.MatchesFilter(rec.metadata, filter) {
			continue
		}
		records = append(records, store.Record{ID: id, Document: rec.document, Metadata: rec.metadata})
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

// Delete removes records by id
func (c *Collection) Delete(ctx context.Context, ids []string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, id := range ids {
		delete(c.records, id)
	}
	return nil
}

// Count returns the number of stored records
func (c *Collection) Count(ctx context.Context) (int, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.records), nil
}

// cosineDistance returns 1 - cosine similarity of the two vectors
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1.0
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
