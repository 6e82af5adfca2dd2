package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"finagent/internal/domain"
)

type fakeGenerator struct {
	answer string
	err    error

	gotSystem string
	gotUser   string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func TestGenerate_DocumentEvidence(t *testing.T) {
	llm := &fakeGenerator{answer: "grounded answer"}
	g := NewGenerator(llm)

	state := &domain.RunState{
		Question: "tariffs?",
		Evidence: domain.DocumentEvidence{Documents: []domain.RetrievedDocument{
			{Score: 0.9, Text: "passage one"},
			{Score: 0.5, Text: "passage two"},
		}},
	}

	answer, err := g.Generate(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "grounded answer" {
		t.Errorf("unexpected answer: %q", answer)
	}

	if !strings.Contains(llm.gotUser, "passage one") || !strings.Contains(llm.gotUser, "passage two") {
		t.Error("expected all kept passages in the context")
	}
	if strings.Index(llm.gotUser, "passage one") > strings.Index(llm.gotUser, "passage two") {
		t.Error("expected passages concatenated in filter order")
	}
	if !strings.Contains(llm.gotUser, "tariffs?") {
		t.Error("expected the original question in the prompt")
	}
}

func TestGenerate_PriceEvidence(t *testing.T) {
	llm := &fakeGenerator{answer: "gold closed at 2512.30 USD"}
	g := NewGenerator(llm)

	state := &domain.RunState{
		Question: "gold price yesterday?",
		Evidence: domain.PriceEvidence{Result: domain.PriceResult{
			Source:      "yahoo_finance",
			Ticker:      "GC=F",
			Price:       2512.30,
			Currency:    "USD",
			AsOf:        time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC),
			DisplayName: "Gold Futures",
		}},
	}

	if _, err := g.Generate(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Gold Futures", "2512.30", "USD", "2025-08-26"} {
		if !strings.Contains(llm.gotUser, want) {
			t.Errorf("expected %q in price context, got %q", want, llm.gotUser)
		}
	}
}

func TestGenerate_PriceFailureStillAnswered(t *testing.T) {
	llm := &fakeGenerator{answer: "that date is in the future"}
	g := NewGenerator(llm)

	state := &domain.RunState{
		Question: "gold price in 2030?",
		Evidence: domain.PriceEvidence{Result: domain.PriceResult{
			Err: "2030-01-01 is in the future, no data available",
		}},
	}

	answer, err := g.Generate(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer == "" {
		t.Fatal("expected a non-empty answer for the error path")
	}
	if !strings.Contains(llm.gotUser, "future") {
		t.Error("expected the failure reason in the context")
	}
}

func TestGenerate_NoEvidence(t *testing.T) {
	llm := &fakeGenerator{answer: "I could not find that information."}
	g := NewGenerator(llm)

	state := &domain.RunState{Question: "price of happiness?", Evidence: domain.NoEvidence{}}

	answer, err := g.Generate(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer == "" {
		t.Fatal("expected a best-effort answer with empty evidence")
	}
	if !strings.Contains(llm.gotUser, "No evidence") {
		t.Error("expected an explicit empty-evidence context")
	}
}

func TestGenerate_ServiceFailurePropagates(t *testing.T) {
	g := NewGenerator(&fakeGenerator{err: domain.ErrServiceUnavailable})
	state := &domain.RunState{Question: "q", Evidence: domain.NoEvidence{}}

	if _, err := g.Generate(context.Background(), state); err == nil {
		t.Fatal("expected error when generation fails")
	}
}
