package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finagent/internal/domain"
	"finagent/internal/port"
)

const extractorPromptTmpl = `You are a question extractor that converts a user question into a JSON object
for a market data lookup. The JSON must have exactly three fields:
- "symbol": the exchange ticker
- "date": the date in YYYY-MM-DD format
- "display_name": a short, human-readable name of the ticker
  (e.g. GC=F -> "Gold Futures", ^GSPC -> "S&P 500 Index", AAPL -> "Apple Inc.")

Rules for choosing the ticker:
- Always prefer stable tickers: futures contracts (like GC=F, CL=F, ZW=F),
  major stock indices (like ^GSPC, ^DJI), large-cap stocks (like AAPL, MSFT, TSLA),
  or liquid ETFs (like SPY, GLD, SLV).
- Do NOT use FX spot symbols (e.g. XAUUSD=X, EURUSD=X), as they are unreliable.
- If unsure, pick the most common futures, index, stock, or ETF ticker.
- If the question names no identifiable instrument, set "symbol" to "".

Today's date is %s.

Return ONLY a valid JSON object, for example:

{"symbol": "GC=F", "date": "2025-08-22", "display_name": "Gold Futures"}`

const instrumentSchema = `{
	"type": "object",
	"properties": {
		"symbol": {"type": "string"},
		"date": {"type": "string"},
		"display_name": {"type": "string"}
	},
	"required": ["symbol", "date", "display_name"]
}`

// InstrumentExtractor converts a ticker question into a structured
// instrument reference, anchored on today's date so relative expressions
// like "yesterday" resolve correctly.
type InstrumentExtractor struct {
	llm port.StructuredLLM
}

func NewInstrumentExtractor(llm port.StructuredLLM) *InstrumentExtractor {
	return &InstrumentExtractor{llm: llm}
}

// Extract returns nil when no instrument is identifiable in the
// question. That is a normal outcome, not an error.
func (e *InstrumentExtractor) Extract(ctx context.Context, question string, today time.Time) (*domain.InstrumentRef, error) {
	prompt := fmt.Sprintf(extractorPromptTmpl, today.Format("2006-01-02"))

	var ref domain.InstrumentRef
	if err := e.llm.Invoke(ctx, prompt, question, instrumentSchema, &ref); err != nil {
		return nil, fmt.Errorf("extracting instrument: %w", err)
	}

	if strings.TrimSpace(ref.Symbol) == "" {
		return nil, nil
	}
	return &ref, nil
}
