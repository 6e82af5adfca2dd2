package domain

import "time"

// Route is the classifier's decision for an incoming question.
type Route int

const (
	// RouteDocument sends the question through semantic retrieval over
	// the news-event knowledge base.
	RouteDocument Route = iota
	// RouteTicker sends the question through instrument extraction and
	// a market-data price lookup.
	RouteTicker
)

func (r Route) String() string {
	if r == RouteTicker {
		return "ticker"
	}
	return "document"
}

// RetrievedDocument is a fused news-event passage returned by semantic
// search, scored by inner-product similarity (higher is more similar).
type RetrievedDocument struct {
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// InstrumentRef identifies a priced instrument extracted from free text.
type InstrumentRef struct {
	Symbol      string `json:"symbol"`
	Date        string `json:"date"` // YYYY-MM-DD
	DisplayName string `json:"display_name"`
}

// PriceResult is the outcome of a point-in-time price lookup. Err is set
// for structured failures (missing input, future date, weekend, no data);
// these still flow to the generator as evidence.
type PriceResult struct {
	Source      string    `json:"source,omitempty"`
	Ticker      string    `json:"ticker,omitempty"`
	Price       float64   `json:"price,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	AsOf        time.Time `json:"asof,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Err         string    `json:"error,omitempty"`
}

// Failed reports whether the lookup produced a structured failure.
func (p PriceResult) Failed() bool { return p.Err != "" }

// EvidenceKind discriminates the variants of Evidence.
type EvidenceKind int

const (
	EvidenceNone EvidenceKind = iota
	EvidenceDocuments
	EvidencePrice
)

// Evidence is what a branch of the pipeline gathered for the generator:
// a filtered document set, a price result, or nothing at all.
type Evidence interface {
	Kind() EvidenceKind
}

// DocumentEvidence holds filtered passages in retrieval order.
type DocumentEvidence struct {
	Documents []RetrievedDocument
}

func (DocumentEvidence) Kind() EvidenceKind { return EvidenceDocuments }

// PriceEvidence holds a price lookup result, success or structured failure.
type PriceEvidence struct {
	Result PriceResult
}

func (PriceEvidence) Kind() EvidenceKind { return EvidencePrice }

// NoEvidence marks a branch that found nothing to ground an answer on,
// e.g. no instrument was identifiable in a ticker question.
type NoEvidence struct{}

func (NoEvidence) Kind() EvidenceKind { return EvidenceNone }

// RunState is the per-question state threaded through the pipeline.
// One instance per request; never shared across runs.
type RunState struct {
	Question   string
	Route      Route
	Evidence   Evidence
	Generation string
}

// NewsEvent is one entry of a news API export, the unit the knowledge
// base is built from.
type NewsEvent struct {
	ID                string            `json:"id"`
	EventDate         string            `json:"eventDate"`
	Title             map[string]string `json:"title"`
	Summary           map[string]string `json:"summary"`
	Location          EventLocation     `json:"location"`
	Categories        []string          `json:"categories"`
	TotalArticleCount int               `json:"totalArticleCount"`
	Relevance         int               `json:"relevance"`
}

// EventLocation is the place an event was reported from.
type EventLocation struct {
	City    string `json:"city"`
	Country string `json:"country"`
}
