package port

import "context"

// StructuredLLM invokes a reasoning service whose output is constrained
// to a fixed JSON schema. schema is a JSON Schema document the raw
// response is validated against before out is unmarshaled from it.
// Transport and schema-validation failures return an error wrapping
// domain.ErrServiceUnavailable.
type StructuredLLM interface {
	Invoke(ctx context.Context, systemPrompt, userContent, schema string, out any) error
}

// Generator produces free-form text from a system and user prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
