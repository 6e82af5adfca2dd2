package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"finagent/internal/adapter/embedding"
	"finagent/internal/adapter/fs"
	"finagent/internal/adapter/store"
	"finagent/internal/domain"
	"finagent/internal/usecase"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build the knowledge base from news-event exports",
	Long: `Fuse news events from JSON exports into retrievable passages, embed
them and store them in the knowledge base.

Examples:
  finagent index ./exports          # Ingest every matching JSON file
  finagent index newsapi.json       # Ingest a single export`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	cfg := GetConfig()

	var files []string
	if info.IsDir() {
		walker := fs.NewWalker(cfg.KnowledgeBase.Includes, cfg.KnowledgeBase.Excludes)
		files, err = walker.Walk(path)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", path, err)
		}
	} else {
		files = []string{path}
	}
	if len(files) == 0 {
		return fmt.Errorf("no news exports found under %s", path)
	}

	var events []domain.NewsEvent
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
		parsed, err := usecase.ParseEvents(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", f, err)
		}
		events = append(events, parsed...)
	}
	fmt.Printf("Loaded %d events from %d files\n", len(events), len(files))

	dbPath := kbPath(cfg, GetRootDir())
	if dbPath == memoryKBPath {
		return fmt.Errorf("knowledge_base.path is %s; indexing needs a persistent path", memoryKBPath)
	}

	embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.Dimension, cfg.Embedding.BatchSize)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating knowledge base directory: %w", err)
	}
	kb, err := store.Open(dbPath, embedder.Dimension())
	if err != nil {
		return err
	}
	defer kb.Close()

	startID, err := kb.Count()
	if err != nil {
		return fmt.Errorf("reading knowledge base size: %w", err)
	}

	bar := progressbar.Default(int64(len(events)), "embedding")
	builder := usecase.NewKnowledgeBaseBuilder(embedder, kb, cfg.Embedding.BatchSize)
	builder.Progress = func(done, total int) {
		bar.Set(done)
	}

	result, err := builder.Build(events, startID)
	if err != nil {
		return fmt.Errorf("building knowledge base: %w", err)
	}
	bar.Finish()

	fmt.Printf("Indexed %d passages (%d events skipped) into %s\n",
		result.Passages, result.Skipped, dbPath)
	return nil
}
