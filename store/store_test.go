package store

import (
	"context"
	"testing"

	"github.com/dpeckham/kgx/pipeline"
)

func TestLookupMissReturnsFalse(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_, found, err := s.Lookup(context.Background(), "d1", "r1", ContentHash("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected cache miss")
	}
}

func TestPutThenLookupRoundTrips(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	hash := ContentHash("Alice knows Bob.")
	result := pipeline.ExtractionResult{RecordID: "r1"}

	if err := s.Put(context.Background(), "d1", "r1", hash, result); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, found, err := s.Lookup(context.Background(), "d1", "r1", hash)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if got.RecordID != "r1" {
		t.Errorf("expected record id r1, got %s", got.RecordID)
	}
}

func TestLookupMissesOnChangedHash(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Put(context.Background(), "d1", "r1", ContentHash("old text"), pipeline.ExtractionResult{RecordID: "r1"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	_, found, err := s.Lookup(context.Background(), "d1", "r1", ContentHash("new text"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected cache miss after content changed")
	}
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	hash1 := ContentHash("first")
	hash2 := ContentHash("second")
	if err := s.Put(context.Background(), "d1", "r1", hash1, pipeline.ExtractionResult{RecordID: "r1"}); err != nil {
		t.Fatalf("put 1: %v", err)
	}
	if err := s.Put(context.Background(), "d1", "r1", hash2, pipeline.ExtractionResult{RecordID: "r1"}); err != nil {
		t.Fatalf("put 2: %v", err)
	}

	_, found, err := s.Lookup(context.Background(), "d1", "r1", hash1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected stale hash to miss after overwrite")
	}

	_, found, err = s.Lookup(context.Background(), "d1", "r1", hash2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Error("expected updated hash to hit")
	}
}
