// Package memstore provides an ephemeral knowledge base holding vectors
// and passages in process memory. It implements the same ports as the
// persistent store and is used where durability is not needed.
package memstore

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[int][]float32
	passages  map[int]string
}

func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension: dimension,
		vectors:   make(map[int][]float32),
		passages:  make(map[int]string),
	}
}

// Add stores a vector and its passage. Vectors are normalized to unit
// length so Search scores are cosine similarities.
func (s *MemoryStore) Add(id int, vector []float32, passage string) error {
	if len(vector) != s.dimension {
		return fmt.Errorf("vector dimension %d does not match store dimension %d", len(vector), s.dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[id] = normalize(vector)
	s.passages[id] = passage
	return nil
}

func (s *MemoryStore) Flush() error {
	return nil
}

func (s *MemoryStore) Search(query []float32, k int) ([]int, []float32, error) {
	if len(query) != s.dimension {
		return nil, nil, fmt.Errorf("query dimension %d does not match store dimension %d", len(query), s.dimension)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		id    int
		score float32
	}
	results := make([]scored, 0, len(s.vectors))
	for id, v := range s.vectors {
		results = append(results, scored{id: id, score: dot(query, v)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].score > results[j].score })

	if k > len(results) {
		k = len(results)
	}
	ids := make([]int, k)
	scores := make([]float32, k)
	for i := 0; i < k; i++ {
		ids[i] = results[i].id
		scores[i] = results[i].score
	}
	return ids, scores, nil
}

func (s *MemoryStore) Passage(id int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.passages[id]
	if !ok {
		return "", fmt.Errorf("passage not found: %d", id)
	}
	return text, nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

const normEpsilon = 1e-12

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + normEpsilon
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
