package cli

import (
	"fmt"
	"path/filepath"

	"finagent/config"
	"finagent/internal/adapter/embedding"
	"finagent/internal/adapter/llm"
	"finagent/internal/adapter/market"
	"finagent/internal/adapter/memstore"
	"finagent/internal/adapter/store"
	"finagent/internal/pipeline"
	"finagent/internal/port"
	"finagent/internal/usecase"
)

// memoryKBPath selects an ephemeral in-memory knowledge base instead of
// a bbolt file.
const memoryKBPath = ":memory:"

// kbPath resolves the knowledge base file relative to the root directory.
func kbPath(cfg *config.Config, rootDir string) string {
	path := cfg.KnowledgeBase.Path
	if path == memoryKBPath || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

// openKnowledgeBase opens the configured knowledge base. The returned
// closer releases it.
func openKnowledgeBase(cfg *config.Config, rootDir string, dimension int) (port.VectorIndex, port.PassageStore, func() error, error) {
	path := kbPath(cfg, rootDir)
	if path == memoryKBPath {
		mem := memstore.NewMemoryStore(dimension)
		return mem, mem, mem.Close, nil
	}

	kb, err := store.Open(path, dimension)
	if err != nil {
		return nil, nil, nil, err
	}
	return kb, kb, kb.Close, nil
}

// buildPipeline constructs every service once and wires the pipeline.
// The returned closer releases the knowledge base.
func buildPipeline(cfg *config.Config, rootDir string) (*pipeline.Pipeline, func() error, error) {
	chat, err := llm.NewClient(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.APIKey(), cfg.LLM.Timeout())
	if err != nil {
		return nil, nil, fmt.Errorf("creating LLM client: %w", err)
	}

	graderLLM := chat
	if cfg.LLM.GraderModel != "" && cfg.LLM.GraderModel != cfg.LLM.Model {
		graderLLM = chat.WithModel(cfg.LLM.GraderModel)
	}

	embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.Dimension, cfg.Embedding.BatchSize)
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	index, passages, closeKB, err := openKnowledgeBase(cfg, rootDir, embedder.Dimension())
	if err != nil {
		return nil, nil, err
	}

	quotes := market.NewYahooClient(cfg.Market.BaseURL, cfg.Market.Timeout())

	p := pipeline.New(
		usecase.NewClassifier(chat),
		usecase.NewInstrumentExtractor(chat),
		usecase.NewPriceLookup(quotes),
		usecase.NewRetriever(embedder, index, passages),
		usecase.NewRelevanceGrader(graderLLM),
		usecase.NewGenerator(chat),
		pipeline.Options{
			TopK:         cfg.Retrieve.TopK,
			StageTimeout: cfg.LLM.Timeout(),
		},
	)

	return p, closeKB, nil
}
