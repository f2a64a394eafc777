package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// PostgresStore is a vector store backed by PostgreSQL with the pgvector
// extension. Search ranks with the <=> cosine distance operator, so ordering
// is consistent with the in-process cosine scorer.
type PostgresStore struct {
	pool *pgxpool.Pool
	dims int
}

// PostgresActivityStore logs activity into the same database.
type PostgresActivityStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pgx pool with pgvector type registration and
// returns the document and activity stores sharing it.
func OpenPostgres(ctx context.Context, databaseURL string, dims int) (*PostgresStore, *PostgresActivityStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing database URL: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool, dims: dims}, &PostgresActivityStore{pool: pool}, nil
}

// Init creates the extension and schemas if absent. Idempotent.
func (s *PostgresStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.dims),
		`CREATE INDEX IF NOT EXISTS idx_documents_embedding ON documents USING hnsw (embedding vector_cosine_ops)`,
		`CREATE TABLE IF NOT EXISTS activity_log (
			id UUID PRIMARY KEY,
			action TEXT NOT NULL,
			user_id TEXT NOT NULL,
			resource_id TEXT,
			success BOOLEAN NOT NULL,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return &Error{Op: "init", Err: err}
		}
	}
	return nil
}

// Add upserts a record by id.
func (s *PostgresStore) Add(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	if len(vector) != s.dims {
		return dimensionError(len(vector), s.dims)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, embedding, metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		id, pgvector.NewVector(vector), metadata,
	)
	if err != nil {
		return &Error{Op: "add", Err: err}
	}
	return nil
}

// Search returns the topK nearest records by cosine distance.
func (s *PostgresStore) Search(ctx context.Context, query []float32, topK int) ([]SearchResult, error) {
	if err := validateTopK(topK); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, embedding, metadata, (1 - (embedding <=> $1))::FLOAT AS score
		FROM documents
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(query), topK,
	)
	if err != nil {
		return nil, &Error{Op: "search", Err: err}
	}
	defer rows.Close()

	results := make([]SearchResult, 0, topK)
	for rows.Next() {
		var (
			r   SearchResult
			vec pgvector.Vector
		)
		if err := rows.Scan(&r.ID, &vec, &r.Metadata, &r.Score); err != nil {
			return nil, &Error{Op: "search", Err: fmt.Errorf("scan row: %w", err)}
		}
		r.Vector = vec.Slice()
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "search", Err: err}
	}
	return results, nil
}

// Count returns the number of stored records.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, &Error{Op: "count", Err: err}
	}
	return n, nil
}

// Close closes the pool shared with the activity store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Log records an activity entry.
func (s *PostgresActivityStore) Log(ctx context.Context, action Action, userID string, resourceID *string, success bool, metadata map[string]any) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO activity_log (id, action, user_id, resource_id, success, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), action, userID, resourceID, success, metadata, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *PostgresActivityStore) Recent(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, action, user_id, resource_id, success, metadata, created_at
		FROM activity_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activity log: %w", err)
	}
	defer rows.Close()

	var entries []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.UserID, &e.ResourceID, &e.Success, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
