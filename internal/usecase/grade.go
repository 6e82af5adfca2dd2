package usecase

import (
	"context"
	"fmt"

	"finagent/internal/domain"
	"finagent/internal/port"
)

const graderPrompt = `You are a document retrieval evaluator responsible for checking the relevancy of a retrieved document to the user's question.
If the document contains keyword(s) or semantic meaning related to the question, grade it as relevant.
Output a binary score 'yes' or 'no' to indicate whether the document is relevant to the question.
Respond with a JSON object: {"binary_score": "yes"} or {"binary_score": "no"}.`

// RelevanceGrader drops retrieved passages judged irrelevant to the
// question. Each document is graded independently; surviving documents
// keep their original order.
type RelevanceGrader struct {
	llm port.StructuredLLM
}

func NewRelevanceGrader(llm port.StructuredLLM) *RelevanceGrader {
	return &RelevanceGrader{llm: llm}
}

// Filter grades each document. A grading failure for any document is a
// run failure; there is no default keep or drop.
func (g *RelevanceGrader) Filter(ctx context.Context, docs []domain.RetrievedDocument, question string) ([]domain.RetrievedDocument, error) {
	kept := make([]domain.RetrievedDocument, 0, len(docs))
	for _, d := range docs {
		userContent := fmt.Sprintf("Retrieved document:\n\n%s\n\nUser question: %s", d.Text, question)

		var out binaryScore
		if err := g.llm.Invoke(ctx, graderPrompt, userContent, binaryScoreSchema, &out); err != nil {
			return nil, fmt.Errorf("grading document: %w", err)
		}
		if out.BinaryScore == "yes" {
			kept = append(kept, d)
		}
	}
	return kept, nil
}
