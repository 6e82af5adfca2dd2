package usecase

import (
	"context"
	"fmt"
	"strings"

	"finagent/internal/domain"
	"finagent/internal/port"
)

const generatorPrompt = `You are an assistant for question-answering tasks.
Use only the pieces of retrieved context provided below to answer the question.
If the context does not contain the answer, say that you don't know.
Keep the answer concise, three sentences maximum.`

// Generator synthesizes the final answer from whichever evidence the
// active branch produced.
type Generator struct {
	llm port.Generator
}

func NewGenerator(llm port.Generator) *Generator {
	return &Generator{llm: llm}
}

// Generate discriminates on the evidence variant, assembles a context
// block and asks the generation service for a grounded answer. Empty
// evidence still produces an answer explaining that nothing was found.
func (g *Generator) Generate(ctx context.Context, state *domain.RunState) (string, error) {
	contextBlock := buildContext(state.Evidence)

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, state.Question)
	answer, err := g.llm.Generate(ctx, generatorPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return answer, nil
}

func buildContext(ev domain.Evidence) string {
	switch e := ev.(type) {
	case domain.DocumentEvidence:
		if len(e.Documents) == 0 {
			return "No relevant documents were found for this question."
		}
		texts := make([]string, len(e.Documents))
		for i, d := range e.Documents {
			texts[i] = d.Text
		}
		return strings.Join(texts, "\n\n")

	case domain.PriceEvidence:
		return formatPrice(e.Result)

	default:
		return "No evidence could be gathered for this question. " +
			"Explain to the user that the requested information is unavailable."
	}
}

func formatPrice(p domain.PriceResult) string {
	if p.Failed() {
		return fmt.Sprintf("The price lookup did not return a value: %s.", p.Err)
	}
	return fmt.Sprintf("%s (%s) closed at %.2f %s on %s (source: %s).",
		p.DisplayName, p.Ticker, p.Price, p.Currency,
		p.AsOf.Format("2006-01-02"), p.Source)
}
