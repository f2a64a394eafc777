package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shahbaz-dev1/ai-resume-filter/internal/similarity"
)

// MemoryStore is an in-memory vector store for development and testing.
type MemoryStore struct {
	mu   sync.RWMutex
	dims int
	docs map[string]Document
}

// NewMemoryStore creates an in-memory store with the given collection
// dimensionality.
func NewMemoryStore(dims int) *MemoryStore {
	return &MemoryStore{
		dims: dims,
		docs: make(map[string]Document),
	}
}

// Init is a no-op for the in-memory store.
func (s *MemoryStore) Init(_ context.Context) error { return nil }

// Add upserts a record by id.
func (s *MemoryStore) Add(_ context.Context, id string, vector []float32, metadata map[string]any) error {
	if len(vector) != s.dims {
		return dimensionError(len(vector), s.dims)
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)
	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = Document{ID: id, Vector: vec, Metadata: md}
	return nil
}

// Search ranks all records by brute-force cosine similarity.
func (s *MemoryStore) Search(_ context.Context, query []float32, topK int) ([]SearchResult, error) {
	if err := validateTopK(topK); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.docs))
	for _, doc := range s.docs {
		results = append(results, SearchResult{
			Document: doc,
			Score:    similarity.Cosine(query, doc.Vector),
		})
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
func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.docs)), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// MemoryActivityStore keeps activity entries in memory, newest first.
type MemoryActivityStore struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

// NewMemoryActivityStore creates an empty in-memory activity log.
func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{}
}

// Log records an activity entry.
func (s *MemoryActivityStore) Log(_ context.Context, action Action, userID string, resourceID *string, success bool, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, ActivityEntry{
		ID:         uuid.NewString(),
		Action:     action,
		UserID:     userID,
		ResourceID: resourceID,
		Success:    success,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *MemoryActivityStore) Recent(_ context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ActivityEntry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
