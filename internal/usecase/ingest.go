package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"finagent/internal/domain"
	"finagent/internal/port"
)

var spaceRe = regexp.MustCompile(`\s+`)

// KnowledgeBaseBuilder turns news-event exports into the embedding
// knowledge base the retriever searches at runtime.
type KnowledgeBaseBuilder struct {
	embedder  port.Embedder
	writer    port.VectorWriter
	batchSize int

	// Progress, when set, is called after each embedded batch.
	Progress func(done, total int)
}

func NewKnowledgeBaseBuilder(embedder port.Embedder, writer port.VectorWriter, batchSize int) *KnowledgeBaseBuilder {
	if batchSize <= 0 {
		batchSize = 128
	}
	return &KnowledgeBaseBuilder{
		embedder:  embedder,
		writer:    writer,
		batchSize: batchSize,
	}
}

// BuildResult summarizes an ingestion run.
type BuildResult struct {
	Events   int
	Skipped  int // events with no usable text
	Passages int
}

// Build fuses the events into passages, embeds them in batches and
// stores vector and passage under sequential ids starting at startID.
func (b *KnowledgeBaseBuilder) Build(events []domain.NewsEvent, startID int) (*BuildResult, error) {
	result := &BuildResult{Events: len(events)}

	passages := make([]string, 0, len(events))
	for _, e := range events {
		text := FuseEvent(e)
		if text == "" {
			result.Skipped++
			continue
		}
		passages = append(passages, text)
	}

	id := startID
	for i := 0; i < len(passages); i += b.batchSize {
		end := i + b.batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[i:end]

		vectors, err := b.embedder.Embed(batch)
		if err != nil {
			return nil, fmt.Errorf("embedding batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}

		for j, vec := range vectors {
			if err := b.writer.Add(id, vec, batch[j]); err != nil {
				return nil, fmt.Errorf("storing passage %d: %w", id, err)
			}
			id++
			result.Passages++
		}

		if b.Progress != nil {
			b.Progress(end, len(passages))
		}
	}

	if err := b.writer.Flush(); err != nil {
		return nil, fmt.Errorf("flushing knowledge base: %w", err)
	}
	return result, nil
}

// ParseEvents decodes a news export. The root may be a bare list or an
// object with an "events" key.
func ParseEvents(data []byte) ([]domain.NewsEvent, error) {
	var events []domain.NewsEvent
	if err := json.Unmarshal(data, &events); err == nil {
		return events, nil
	}

	var wrapper struct {
		Events []domain.NewsEvent `json:"events"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing news export: %w", err)
	}
	return wrapper.Events, nil
}

// FuseEvent denormalizes an event into a single retrievable passage:
// date, headline, summary, location and categories on separate lines.
func FuseEvent(e domain.NewsEvent) string {
	title := normSpace(e.Title["eng"])
	summary := normSpace(e.Summary["eng"])
	if title == "" && summary == "" {
		return ""
	}

	location := strings.Trim(strings.TrimSpace(
		normSpace(e.Location.City)+", "+normSpace(e.Location.Country)), ", ")

	parts := []string{
		"【Event】",
		"Date: " + e.EventDate,
		"Headline: " + title,
		"Summary: " + summary,
	}
	if location != "" {
		parts = append(parts, "Location: "+location)
	}
	if len(e.Categories) > 0 {
		parts = append(parts, "Categories: "+strings.Join(e.Categories, ", "))
	}
	return strings.Join(parts, "\n")
}

func normSpace(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
