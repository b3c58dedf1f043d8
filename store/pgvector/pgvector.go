// Package pgvector implements the store contract on PostgreSQL with
// the pgvector extension. Each collection is backed by its own table.
package pgvector

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/docchat/docchat/helper"
	"github.com/docchat/docchat/model"
	"github.com/docchat/docchat/store"
)

var validCollectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Store is a PostgreSQL backed store.Store implementation
type Store struct {
	db           *helper.Database
	embeddingDim int
}

// NewStore initializes the store on the given database connection.
// embeddingDim is the dimension of all embeddings written to the store.
func NewStore(db *helper.Database, embeddingDim int) (*Store, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	pgStore := &Store{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := pgStore.createRegistry()
	if err != nil {
		return nil, helper.NewError("create collection registry", err)
	}

	db.Logger.Info("Initialized pgvector store")

	return pgStore, nil
}

func (s *Store) createRegistry() error {
	_, err := s.db.Instance.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`)
	if err != nil {
		return helper.NewError("create vector extension", err)
	}

	_, err = s.db.Instance.Exec(`
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`)
	if err != nil {
		return helper.NewError("create collections table", err)
	}
	return nil
}

// GetOrCreateCollection returns the named collection, creating its
// backing table if it does not exist yet.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (store.Collection, error) {
	if !validCollectionName.MatchString(name) {
		return nil, helper.NewError("collection name validation", fmt.Errorf("invalid collection name %q", name))
	}

	_, err := s.db.Instance.ExecContext(ctx,
		`INSERT INTO collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING;`,
		name,
	)
	if err != nil {
		return nil, helper.NewError("register collection", err)
	}

	table := "collection_" + name
	_, err = s.db.Instance.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			document TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, table, s.embeddingDim),
	)
	if err != nil {
		return nil, helper.NewError("create collection table", err)
	}

	s.db.Logger.Info("Checked/created collection", "name", name)

	return &Collection{db: s.db, table: table}, nil
}

// ListCollections returns the names of all registered collections
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.db.Instance.QueryContext(ctx, `SELECT name FROM collections ORDER BY name;`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, helper.NewError("scan", err)
		}
		names = append(names, name)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return names, nil
}

// Collection is a single pgvector backed collection
type Collection struct {
	db    *helper.Database
	table string
}

// Add upserts documents with their embeddings and metadata
func (c *Collection) Add(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []model.Metadata) error {
	if len(ids) != len(embeddings) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return helper.NewError("input validation", fmt.Errorf("ids, embeddings, documents and metadatas must have the same length"))
	}

	tx, err := c.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, embedding, document, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET embedding = EXCLUDED.embedding,
			document = EXCLUDED.document,
			metadata = EXCLUDED.metadata;`, c.table),
	)
	if err != nil {
		return helper.NewError("prepare statement", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		_, err := stmt.ExecContext(ctx, id, pgvector.NewVector(embeddings[i]), documents[i], metadatas[i])
		if err != nil {
			return helper.NewError("exec", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit transaction", err)
	}

	return nil
}

// Query returns up to nResults nearest neighbours by cosine distance
func (c *Collection) Query(ctx context.Context, embedding []float32, nResults int, filter map[string]interface{}) ([]store.QueryMatch, error) {
	if len(embedding) == 0 {
		return nil, helper.NewError("input validation", fmt.Errorf("query embedding must not be empty"))
	}

	where, args := buildFilter(filter, 2)
	args = append([]interface{}{pgvector.NewVector(embedding)}, args...)
	args = append(args, nResults)

	query := fmt.Sprintf(`
		SELECT id, document, metadata, embedding <=> $1 AS distance
		FROM %s
		%s
		ORDER BY embedding <=> $1
		LIMIT $%d;`, c.table, where, len(args))

	rows, err := c.db.Instance.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var matches []store.QueryMatch
	for rows.Next() {
		match := store.QueryMatch{}
		err := rows.Scan(
			&match.ID,
			&match.Document,
			&match.Metadata,
			&match.Distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		matches = append(matches, match)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return matches, nil
}

// Get returns records by id and/or metadata filter
func (c *Collection) Get(ctx context.Context, ids []string, filter map[string]interface{}, limit int) ([]store.Record, error) {
	where, args := buildFilter(filter, 1)

	if len(ids) > 0 {
		placeholder := fmt.Sprintf("$%d", len(args)+1)
		if where == "" {
			where = fmt.Sprintf("WHERE id = ANY(%s)", placeholder)
		} else {
			where += fmt.Sprintf(" AND id = ANY(%s)", placeholder)
		}
		args = append(args, pq.Array(ids))
	}

	query := fmt.Sprintf(`SELECT id, document, metadata FROM %s %s ORDER BY id`, c.table, where)
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := c.db.Instance.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		record := store.Record{}
		err := rows.Scan(
			&record.ID,
			&record.Document,
			&record.Metadata,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return records, nil
}

// Delete removes records by id
func (c *Collection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := c.db.Instance.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1);`, c.table),
		pq.Array(ids),
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// Count returns the number of stored records
func (c *Collection) Count(ctx context.Context) (int, error) {
	row := c.db.Instance.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, c.table))

	var count int
	err := row.Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// buildFilter translates a metadata filter into a WHERE clause on the
// jsonb metadata column. String values require equality, []string
// values require membership. Placeholders start at startIndex.
func buildFilter(filter map[string]interface{}, startIndex int) (string, []interface{}) {
	if len(filter) == 0 {
		return "", nil
	}

	var conditions []string
	var args []interface{}
	index := startIndex

	for key, want := range filter {
		switch want := want.(type) {
		case []string:
			conditions = append(conditions, fmt.Sprintf("metadata->>'%s' = ANY($%d)", sanitizeKey(key), index))
			args = append(args, pq.Array(want))
		default:
			conditions = append(conditions, fmt.Sprintf("metadata->>'%s' = $%d", sanitizeKey(key), index))
			args = append(args, fmt.Sprintf("%v", want))
		}
		index++
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

var keySanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func sanitizeKey(key string) string {
	return keySanitizer.ReplaceAllString(key, "")
}
