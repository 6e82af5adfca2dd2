package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"finagent/internal/domain"
)

// fakeLLM replays canned JSON responses for structured invocations.
type fakeLLM struct {
	responses []string
	err       error
	calls     int
	systems   []string
	users     []string
}

func (f *fakeLLM) Invoke(ctx context.Context, systemPrompt, userContent, schema string, out any) error {
	f.systems = append(f.systems, systemPrompt)
	f.users = append(f.users, userContent)
	if f.err != nil {
		return f.err
	}
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	return json.Unmarshal([]byte(f.responses[i]), out)
}

func TestClassify_TickerQuestion(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"binary_score": "yes"}`}}
	c := NewClassifier(llm)

	route, err := c.Classify(context.Background(), "What is the price of wheat today?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route != domain.RouteTicker {
		t.Errorf("expected ticker route, got %s", route)
	}
}

func TestClassify_DocumentQuestion(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"binary_score": "no"}`}}
	c := NewClassifier(llm)

	route, err := c.Classify(context.Background(), "What is the tariff situation between the US and the EU?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route != domain.RouteDocument {
		t.Errorf("expected document route, got %s", route)
	}
}

func TestClassify_ServiceFailurePropagates(t *testing.T) {
	llm := &fakeLLM{err: domain.ErrServiceUnavailable}
	c := NewClassifier(llm)

	_, err := c.Classify(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error when the service fails")
	}
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestClassify_QuestionReachesService(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"binary_score": "no"}`}}
	c := NewClassifier(llm)

	if _, err := c.Classify(context.Background(), "how do markets work"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(llm.users) != 1 || llm.users[0] != "User question: how do markets work" {
		t.Errorf("question not passed through, got %q", llm.users)
	}
}
