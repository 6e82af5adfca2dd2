package usecase

import (
	"context"
	"fmt"
	"math"

	"finagent/internal/domain"
	"finagent/internal/port"
)

const queryNormEpsilon = 1e-12

// Retriever performs semantic nearest-neighbor search over the
// news-event knowledge base.
type Retriever struct {
	embedder port.Embedder
	index    port.VectorIndex
	passages port.PassageStore
}

func NewRetriever(embedder port.Embedder, index port.VectorIndex, passages port.PassageStore) *Retriever {
	return &Retriever{embedder: embedder, index: index, passages: passages}
}

// Retrieve embeds the question, searches the pre-normalized index and
// maps hits back to their fused passages. Results are
// similarity-descending, at most k, sentinel ids skipped.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedDocument, error) {
	embeddings, err := r.embedder.Embed([]string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	query := normalizeQuery(embeddings[0])

	ids, scores, err := r.index.Search(query, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]domain.RetrievedDocument, 0, len(ids))
	for i, id := range ids {
		if id < 0 {
			continue // sentinel "no match"
		}
		text, err := r.passages.Passage(id)
		if err != nil {
			continue
		}
		results = append(results, domain.RetrievedDocument{
			Score: float64(scores[i]),
			Text:  text,
		})
		if len(results) >= k {
			break
		}
	}
	return results, nil
}

// normalizeQuery L2-normalizes the query vector, epsilon-stabilized so a
// near-zero vector does not divide by zero.
func normalizeQuery(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + queryNormEpsilon

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
