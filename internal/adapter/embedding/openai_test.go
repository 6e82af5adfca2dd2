package embedding

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// embeddingServer answers every request with dim-sized vectors and
// records the request bodies it saw.
func embeddingServer(t *testing.T, dim int) (*httptest.Server, *[]embeddingRequest) {
	t.Helper()
	var requests []embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		requests = append(requests, req)

		resp := embeddingResponse{Data: make([]embeddingData, len(req.Input))}
		for i := range req.Input {
			resp.Data[i] = embeddingData{Embedding: make([]float32, dim), Index: i}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestEmbedder(t *testing.T, model, baseURL string, dimension, batchSize int) *OpenAIEmbedder {
	t.Helper()
	t.Setenv("TEST_EMBED_KEY", "test-key")
	e, err := NewOpenAICompatibleEmbedder("TEST_EMBED_KEY", model, baseURL, dimension, batchSize)
	if err != nil {
		t.Fatalf("failed to create embedder: %v", err)
	}
	return e
}

func TestNew_MissingAPIKey(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "")
	if _, err := NewOpenAIEmbedder("TEST_EMBED_KEY", "text-embedding-3-large", 0, 0); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestDimension_ModelDefaults(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"text-embedding-3-small", 1536},
		{"text-embedding-3-large", 3072},
		{"text-embedding-ada-002", 1536},
	}
	for _, tt := range tests {
		e := newTestEmbedder(t, tt.model, "http://unused", 0, 0)
		if e.Dimension() != tt.want {
			t.Errorf("%s: expected dimension %d, got %d", tt.model, tt.want, e.Dimension())
		}
	}
}

func TestDimension_OverrideRequestsShortenedEmbeddings(t *testing.T) {
	srv, requests := embeddingServer(t, 256)
	e := newTestEmbedder(t, "text-embedding-3-large", srv.URL, 256, 0)

	if e.Dimension() != 256 {
		t.Fatalf("expected configured dimension 256, got %d", e.Dimension())
	}

	if _, err := e.Embed([]string{"passage"}); err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(*requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*requests))
	}
	if (*requests)[0].Dimensions != 256 {
		t.Errorf("expected dimensions 256 in the request, got %d", (*requests)[0].Dimensions)
	}
}

func TestDimension_CustomModelDeclaresWithoutRequesting(t *testing.T) {
	srv, requests := embeddingServer(t, 768)
	e := newTestEmbedder(t, "nomic-embed-text", srv.URL, 768, 0)

	if e.Dimension() != 768 {
		t.Fatalf("expected configured dimension 768, got %d", e.Dimension())
	}

	if _, err := e.Embed([]string{"passage"}); err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if (*requests)[0].Dimensions != 0 {
		t.Errorf("expected no dimensions parameter for a non text-embedding-3 model, got %d", (*requests)[0].Dimensions)
	}
}

func TestEmbed_Batches(t *testing.T) {
	srv, requests := embeddingServer(t, 4)
	e := newTestEmbedder(t, "text-embedding-3-small", srv.URL, 0, 2)

	texts := []string{"a", "b", "c", "d", "e"}
	vectors, err := e.Embed(texts)
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	if len(*requests) != 3 {
		t.Errorf("expected 3 batched requests for 5 texts at batch size 2, got %d", len(*requests))
	}
}

func TestEmbed_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": {"message": "model overloaded"}}`)
	}))
	t.Cleanup(srv.Close)

	e := newTestEmbedder(t, "text-embedding-3-small", srv.URL, 0, 0)
	if _, err := e.Embed([]string{"a"}); err == nil {
		t.Fatal("expected error from API error payload")
	}
}
