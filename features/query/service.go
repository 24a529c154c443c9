package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const systemInstruction = "You are a helpful assistant that provides accurate answers based on given context."

const DefaultTopK = 5

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Store interface {
	Search(ctx context.Context, vector []float32, limit int) ([]RetrievedChunk, error)
}

type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type Service struct {
	embedder  Embedder
	store     Store
	generator Generator
}

func NewService(embedder Embedder, store Store, generator Generator) *Service {
	return &Service{embedder: embedder, store: store, generator: generator}
}

// Ask embeds the question, retrieves the topK nearest chunks and asks the
// generator to answer from them alone. Retrieval failures are returned as
// errors; a generation failure is folded into the answer text so callers
// still see their sources.
func (s *Service) Ask(ctx context.Context, question string, topK int) (*Answer, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(chunks) == 0 {
		return nil, ErrNoResults
	}

	answer, err := s.generator.Complete(ctx, systemInstruction, buildPrompt(question, chunks))
	if err != nil {
		slog.WarnContext(ctx, "generation failed, degrading to error answer", "error", err)
		answer = fmt.Sprintf("Error generating answer: %v", err)
	}

	sources := distinctSources(chunks)
	slog.InfoContext(ctx, "query answered", "chunks", len(chunks), "sources", len(sources))

	return &Answer{
		Query:      question,
		Answer:     answer,
		Sources:    sources,
		NumSources: len(sources),
	}, nil
}

func buildPrompt(question string, chunks []RetrievedChunk) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = fmt.Sprintf("Source %d (from %s):\n%s", i+1, c.SourceURL, c.Content)
	}

	var b strings.Builder
	b.WriteString("You are a helpful assistant that answers questions based on the provided context.\n")
	b.WriteString("Use only the information from the context below to answer the question. If you cannot answer the question based on the context, say so.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// distinctSources keeps the URLs in first-appearance order, which follows the
// retrieval ranking.
func distinctSources(chunks []RetrievedChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.SourceURL]; ok {
			continue
		}
		seen[c.SourceURL] = struct{}{}
		sources = append(sources, c.SourceURL)
	}
	return sources
}
