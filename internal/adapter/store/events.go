package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"finagent/internal/domain"
)

var (
	bucketVectors  = []byte("vectors")
	bucketPassages = []byte("passages")
)

const normEpsilon = 1e-12

// EventStore is the bbolt-backed news-event knowledge base: one
// L2-normalized embedding vector plus one fused passage per event id.
// All vectors are loaded into memory at open; search is brute-force
// inner product, which equals cosine similarity for normalized vectors.
// Reads after open need no locking beyond the RWMutex guarding Add.
type EventStore struct {
	db        *bbolt.DB
	dimension int

	mu      sync.RWMutex
	vectors map[int][]float32
}

type storedVector struct {
	Vector []float32 `json:"v"`
}

// Open opens (or creates) the knowledge base at path. Open failure is
// fatal for retrieval and is reported as ErrIndexUnavailable.
func Open(path string, dimension int) (*EventStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrIndexUnavailable, path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketVectors); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketPassages)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating buckets: %v", domain.ErrIndexUnavailable, err)
	}

	s := &EventStore{
		db:        db,
		dimension: dimension,
		vectors:   make(map[int][]float32),
	}

	if err := s.loadVectors(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: loading vectors: %v", domain.ErrIndexUnavailable, err)
	}

	return s, nil
}

func (s *EventStore) loadVectors() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // Skip corrupted entries
			}
			s.vectors[idFromKey(k)] = stored.Vector
			return nil
		})
	})
}

// Add normalizes and stores a vector and its passage under id.
func (s *EventStore) Add(id int, vector []float32, passage string) error {
	if len(vector) != s.dimension {
		return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(vector))
	}

	normalized := normalize(vector)

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(storedVector{Vector: normalized})
		if err != nil {
			return err
		}
		key := keyFromID(id)
		if err := tx.Bucket(bucketVectors).Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(bucketPassages).Put(key, []byte(passage))
	})
	if err != nil {
		return err
	}

	s.vectors[id] = normalized
	return nil
}

// Flush syncs the database to disk.
func (s *EventStore) Flush() error {
	return s.db.Sync()
}

// Search returns up to k ids ranked by inner-product similarity,
// scores descending.
func (s *EventStore) Search(query []float32, k int) ([]int, []float32, error) {
	if len(query) != s.dimension {
		return nil, nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.vectors) == 0 {
		return nil, nil, nil
	}

	type scored struct {
		id    int
		score float32
	}

	scores := make([]scored, 0, len(s.vectors))
	for id, vec := range s.vectors {
		scores = append(scores, scored{id: id, score: dot(query, vec)})
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}

	ids := make([]int, k)
	sims := make([]float32, k)
	for i := 0; i < k; i++ {
		ids[i] = scores[i].id
		sims[i] = scores[i].score
	}
	return ids, sims, nil
}

// Passage returns the fused text stored under id.
func (s *EventStore) Passage(id int) (string, error) {
	var text string
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketPassages).Get(keyFromID(id))
		if v == nil {
			return fmt.Errorf("passage not found: %d", id)
		}
		text = string(v)
		return nil
	})
	return text, err
}

// Count returns the number of stored passages.
func (s *EventStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors), nil
}

func (s *EventStore) Close() error {
	return s.db.Close()
}

func keyFromID(id int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func idFromKey(k []byte) int {
	return int(binary.BigEndian.Uint64(k))
}

// normalize L2-normalizes a vector, epsilon-stabilized so near-zero
// vectors do not divide by zero.
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
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
