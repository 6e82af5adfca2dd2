package usecase

import (
	"context"
	"fmt"

	"finagent/internal/domain"
	"finagent/internal/port"
)

const classifierPrompt = `You are a router that labels questions as price-related or not.
Output 'yes' only if the user explicitly asks for a numeric market price/quote (current or for a specific date)
for a financial instrument, commodity (e.g., wheat/corn/gold/silver/oil), index, stock, or ETF. Otherwise output 'no'.

Examples:
Q: What is the price of wheat today?      A: yes
Q: Gold price yesterday?                  A: yes
Q: Close of ^GSPC on 2024-12-31?          A: yes
Q: What is the tariff situation EU-US?    A: no
Q: Summarize wheat export bans in 2024.   A: no

Respond with a JSON object: {"binary_score": "yes"} or {"binary_score": "no"}.`

const binaryScoreSchema = `{
	"type": "object",
	"properties": {
		"binary_score": {"type": "string", "enum": ["yes", "no"]}
	},
	"required": ["binary_score"]
}`

type binaryScore struct {
	BinaryScore string `json:"binary_score"`
}

// Classifier decides whether a question asks for an instrument price or
// is a general informational question.
type Classifier struct {
	llm port.StructuredLLM
}

func NewClassifier(llm port.StructuredLLM) *Classifier {
	return &Classifier{llm: llm}
}

// Classify routes the question. A service failure propagates; the
// pipeline never guesses a default route.
func (c *Classifier) Classify(ctx context.Context, question string) (domain.Route, error) {
	var out binaryScore
	userContent := fmt.Sprintf("User question: %s", question)
	if err := c.llm.Invoke(ctx, classifierPrompt, userContent, binaryScoreSchema, &out); err != nil {
		return domain.RouteDocument, fmt.Errorf("classifying question: %w", err)
	}
	if out.BinaryScore == "yes" {
		return domain.RouteTicker, nil
	}
	return domain.RouteDocument, nil
}
