package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/shahbaz-dev1/ai-resume-filter/internal/similarity"
)

// SQLiteStore is a vector store backed by a local SQLite file. Vectors are
// persisted as little-endian float32 blobs; ranking is an in-process cosine
// scan, which is fine at the document counts this service holds.
type SQLiteStore struct {
	db   *sql.DB
	dims int
}

// SQLiteActivityStore logs activity into the same SQLite file.
type SQLiteActivityStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite file at path and returns the
// document and activity stores sharing its handle.
func OpenSQLite(path string, dims int) (*SQLiteStore, *SQLiteActivityStore, error) {
	if path == "" {
		path = "data/vectors.db"
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single connection serializes writes through the driver.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db, dims: dims}, &SQLiteActivityStore{db: db}, nil
}

// Init creates the collection and activity schemas if absent. Idempotent;
// re-running against an existing file leaves it unmodified.
func (s *SQLiteStore) Init(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		vector BLOB NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS activity_log (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		user_id TEXT NOT NULL,
		resource_id TEXT,
		success INTEGER NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return &Error{Op: "init", Err: err}
	}
	return nil
}

// Add upserts a record by id.
func (s *SQLiteStore) Add(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	if len(vector) != s.dims {
		return dimensionError(len(vector), s.dims)
	}

	md, err := json.Marshal(metadata)
	if err != nil {
		return &Error{Op: "add", Err: fmt.Errorf("marshal metadata: %w", err)}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, vector, metadata) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			vector = excluded.vector,
			metadata = excluded.metadata`,
		id, encodeVector(vector), string(md),
	)
	if err != nil {
		return &Error{Op: "add", Err: err}
	}
	return nil
}

// Search scans the collection and ranks by cosine similarity.
func (s *SQLiteStore) Search(ctx context.Context, query []float32, topK int) ([]SearchResult, error) {
	if err := validateTopK(topK); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, vector, metadata FROM documents`)
	if err != nil {
		return nil, &Error{Op: "search", Err: err}
	}
	defer rows.Close()

	results := make([]SearchResult, 0, topK)
	for rows.Next() {
		var (
			id   string
			blob []byte
			md   string
		)
		if err := rows.Scan(&id, &blob, &md); err != nil {
			return nil, &Error{Op: "search", Err: fmt.Errorf("scan row: %w", err)}
		}

		vec, err := decodeVector(blob)
		if err != nil {
			return nil, &Error{Op: "search", Err: fmt.Errorf("document %s: %w", id, err)}
		}

		doc := Document{ID: id, Vector: vec}
		if md != "" {
			if err := json.Unmarshal([]byte(md), &doc.Metadata); err != nil {
				return nil, &Error{Op: "search", Err: fmt.Errorf("document %s metadata: %w", id, err)}
			}
		}

		results = append(results, SearchResult{
			Document: doc,
			Score:    similarity.Cosine(query, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "search", Err: err}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, &Error{Op: "count", Err: err}
	}
	return n, nil
}

// Close closes the database handle shared with the activity store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Log records an activity entry.
func (s *SQLiteActivityStore) Log(ctx context.Context, action Action, userID string, resourceID *string, success bool, metadata map[string]any) error {
	var md *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshal activity metadata: %w", err)
		}
		v := string(b)
		md = &v
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, action, user_id, resource_id, success, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), action, userID, resourceID, success, md, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteActivityStore) Recent(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, user_id, resource_id, success, metadata, created_at
		FROM activity_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activity log: %w", err)
	}
	defer rows.Close()

	var entries []ActivityEntry
	for rows.Next() {
		var (
			e  ActivityEntry
			md *string
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.UserID, &e.ResourceID, &e.Success, &md, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		if md != nil {
			if err := json.Unmarshal([]byte(*md), &e.Metadata); err != nil {
				return nil, fmt.Errorf("activity entry %s metadata: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// encodeVector packs a vector as a little-endian float32 blob.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a little-endian float32 blob.
func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
