package store

import (
	"math"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, dimension int) *EventStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"), dimension)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndPassage(t *testing.T) {
	s := openTestStore(t, 2)

	if err := s.Add(0, []float32{1, 0}, "first passage"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	text, err := s.Passage(0)
	if err != nil {
		t.Fatalf("passage failed: %v", err)
	}
	if text != "first passage" {
		t.Errorf("expected stored passage, got %q", text)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

func TestAdd_DimensionMismatch(t *testing.T) {
	s := openTestStore(t, 3)

	if err := s.Add(0, []float32{1, 0}, "short vector"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestSearch_OrdersBySimilarity(t *testing.T) {
	s := openTestStore(t, 2)

	// Normalized at insert; inner product against a unit query equals
	// cosine similarity.
	s.Add(0, []float32{1, 0}, "east")
	s.Add(1, []float32{0, 1}, "north")
	s.Add(2, []float32{1, 1}, "northeast")

	ids, scores, err := s.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ids))
	}
	if ids[0] != 0 {
		t.Errorf("expected exact match first, got id %d", ids[0])
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			t.Errorf("scores not descending: %v", scores)
		}
	}
}

func TestSearch_KLargerThanStore(t *testing.T) {
	s := openTestStore(t, 2)
	s.Add(0, []float32{1, 0}, "only")

	ids, _, err := s.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected 1 result, got %d", len(ids))
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	s := openTestStore(t, 2)

	if _, _, err := s.Search([]float32{1, 0, 0}, 1); err == nil {
		t.Fatal("expected query dimension mismatch error")
	}
}

func TestVectorsNormalizedAtInsert(t *testing.T) {
	s := openTestStore(t, 2)
	s.Add(0, []float32{3, 4}, "pythagoras")

	// A unit query dotted with a unit vector can score at most 1.
	_, scores, err := s.Search([]float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if scores[0] > 1.0+1e-6 {
		t.Errorf("stored vector not normalized, score %f", scores[0])
	}
	if math.Abs(float64(scores[0])-0.6) > 1e-5 {
		t.Errorf("expected score 0.6 for normalized (3,4) against (1,0), got %f", scores[0])
	}
}

func TestReopenKeepsVectorsAndPassages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.db")

	s, err := Open(path, 2)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	s.Add(5, []float32{0, 1}, "persistent")
	s.Close()

	s2, err := Open(path, 2)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	ids, _, err := s2.Search([]float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != 5 {
		t.Errorf("expected persisted vector under id 5, got %v", ids)
	}
	text, err := s2.Passage(5)
	if err != nil || text != "persistent" {
		t.Errorf("expected persisted passage, got %q, %v", text, err)
	}
}
