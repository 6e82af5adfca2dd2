package port

// VectorIndex searches a pre-normalized inner-product index.
// An id of -1 is a sentinel for "no match" and must be skipped by callers.
type VectorIndex interface {
	Search(query []float32, k int) (ids []int, scores []float32, err error)
}

// PassageStore maps index ids back to stored fused-passage text.
type PassageStore interface {
	// Passage returns the fused text stored under the given index id.
	Passage(id int) (string, error)

	// Count returns the number of stored passages.
	Count() (int, error)
}

// VectorWriter ingests vectors and their passages into the knowledge base.
// Vectors are L2-normalized before storage so that inner-product search
// equals cosine similarity.
type VectorWriter interface {
	Add(id int, vector []float32, passage string) error
	Flush() error
}
