// Package store provides durable vector storage and activity logging.
// Three drivers back the same interfaces: PostgreSQL with pgvector, a local
// SQLite file, and an in-memory store for tests.
package store

import (
	"context"
	"fmt"
	"time"
)

// Document is a stored (id, vector, metadata) record. The metadata mapping
// carries the original source text under the "text" key so search hits can
// return it.
type Document struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"-"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchResult is a document with its similarity score to the query vector.
type SearchResult struct {
	Document
	Score float64 `json:"score"`
}

// DocumentStore is the persistent vector collection. Implementations
// serialize writes; concurrent searches observe either the pre- or
// post-write state of any single add, never a torn record.
type DocumentStore interface {
	// Init creates the collection schema if absent. Idempotent.
	Init(ctx context.Context) error

	// Add upserts a record by id. The vector must match the collection
	// dimensionality; a mismatch fails with *Error without mutating the
	// collection.
	Add(ctx context.Context, id string, vector []float32, metadata map[string]any) error

	// Search returns at most topK records ordered by descending cosine
	// similarity to query. An empty collection yields an empty slice;
	// topK <= 0 fails with *ValidationError.
	Search(ctx context.Context, query []float32, topK int) ([]SearchResult, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Close releases the underlying storage handle.
	Close() error
}

// Error reports a persistence-layer failure, including vector dimension
// mismatches on Add.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError reports a caller-supplied argument that violates a
// documented constraint, such as a non-positive topK.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// dimensionError builds the Add failure for a wrong-length vector.
func dimensionError(got, want int) *Error {
	return &Error{
		Op:  "add",
		Err: fmt.Errorf("vector length %d does not match collection dimensionality %d", got, want),
	}
}

// validateTopK rejects non-positive result limits.
func validateTopK(topK int) error {
	if topK <= 0 {
		return &ValidationError{Msg: fmt.Sprintf("topK must be positive, got %d", topK)}
	}
	return nil
}

// Action labels an audited operation.
type Action string

const (
	ActionVectorAdd     Action = "vector.add"
	ActionVectorSearch  Action = "vector.search"
	ActionVectorAnalyze Action = "vector.analyze"
)

// ActivityEntry is one activity log record.
type ActivityEntry struct {
	ID         string         `json:"id"`
	Action     Action         `json:"action"`
	UserID     string         `json:"user_id"`
	ResourceID *string        `json:"resource_id,omitempty"`
	Success    bool           `json:"success"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ActivityStore records who did what against the vector collection.
type ActivityStore interface {
	Log(ctx context.Context, action Action, userID string, resourceID *string, success bool, metadata map[string]any) error
	Recent(ctx context.Context, limit int) ([]ActivityEntry, error)
}
