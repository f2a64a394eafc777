package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStore_AddSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)

	if err := s.Add(ctx, "doc1", []float32{1, 0, 0}, map[string]any{"text": "hello"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, "doc2", []float32{0, 1, 0}, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	results, err := s.Search(ctx, []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "doc1" {
		t.Errorf("top result %s, want doc1", results[0].ID)
	}
	if results[0].Score < 0.999 {
		t.Errorf("identical vector score %f, want ~1.0", results[0].Score)
	}
	if results[0].Metadata["text"] != "hello" {
		t.Errorf("metadata text = %v, want hello", results[0].Metadata["text"])
	}
}

func TestMemoryStore_EmptySearch(t *testing.T) {
	s := NewMemoryStore(3)
	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("search on empty collection errored: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestMemoryStore_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)

	err := s.Add(ctx, "bad", []float32{1, 0}, nil)
	var stErr *Error
	if !errors.As(err, &stErr) {
		t.Fatalf("expected *Error, got %v", err)
	}

	// the failed add must not have mutated the collection
	n, _ := s.Count(ctx)
	if n != 0 {
		t.Errorf("count after failed add = %d, want 0", n)
	}
}

func TestMemoryStore_InvalidTopK(t *testing.T) {
	s := NewMemoryStore(3)
	for _, topK := range []int{0, -1} {
		_, err := s.Search(context.Background(), []float32{1, 0, 0}, topK)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("topK=%d: expected *ValidationError, got %v", topK, err)
		}
	}
}

func TestMemoryStore_Upsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2)

	_ = s.Add(ctx, "doc1", []float32{1, 0}, map[string]any{"v": 1})
	_ = s.Add(ctx, "doc1", []float32{0, 1}, map[string]any{"v": 2})

	n, _ := s.Count(ctx)
	if n != 1 {
		t.Fatalf("count after upsert = %d, want 1", n)
	}

	results, err := s.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results[0].Score < 0.999 {
		t.Errorf("re-added record not replaced: score %f", results[0].Score)
	}
	if results[0].Metadata["v"] != 2 {
		t.Errorf("metadata not replaced: %v", results[0].Metadata)
	}
}

func TestMemoryActivityStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryActivityStore()

	rid := "doc1"
	if err := s.Log(ctx, ActionVectorAdd, "alice", &rid, true, nil); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := s.Log(ctx, ActionVectorSearch, "bob", nil, true, map[string]any{"result_count": 3}); err != nil {
		t.Fatalf("log: %v", err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// newest first
	if entries[0].Action != ActionVectorSearch || entries[0].UserID != "bob" {
		t.Errorf("unexpected newest entry: %+v", entries[0])
	}
	if entries[1].ResourceID == nil || *entries[1].ResourceID != "doc1" {
		t.Errorf("resource id not preserved: %+v", entries[1])
	}
}

func TestMemoryStore_ConcurrentAddSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)

	const (
		writers    = 8
		iterations = 200
	)

	var wg sync.WaitGroup
	for g := 0; g < writers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				id := fmt.Sprintf("doc-%d-%d", g, i)
				if err := s.Add(ctx, id, []float32{float32(g), float32(i), 1}, map[string]any{"text": id}); err != nil {
					t.Errorf("add %s: %v", id, err)
					return
				}
				results, err := s.Search(ctx, []float32{1, 1, 1}, 3)
				if err != nil {
					t.Errorf("search: %v", err)
					return
				}
				for _, r := range results {
					if len(r.Vector) != 3 || r.ID == "" {
						t.Errorf("torn record: %+v", r)
						return
					}
				}
			}
		}(g)
	}
	wg.Wait()

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != writers*iterations {
		t.Errorf("count = %d, want %d", n, writers*iterations)
	}
}

func TestMemoryActivityStore_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryActivityStore()

	for i := 0; i < 60; i++ {
		if err := s.Log(ctx, ActionVectorAdd, "alice", nil, true, nil); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	entries, err := s.Recent(ctx, 200)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 60 {
		t.Errorf("got %d entries, want all 60 under the clamped limit", len(entries))
	}
}
