package domain

import "errors"

var (
	// ErrServiceUnavailable marks a failed call to a reasoning, grading,
	// generation or embedding service. Runs hit by it produce no answer.
	ErrServiceUnavailable = errors.New("llm service unavailable")

	// ErrIndexUnavailable marks a knowledge base that cannot be opened
	// or read; retrieval cannot proceed without it.
	ErrIndexUnavailable = errors.New("knowledge base unavailable")
)
