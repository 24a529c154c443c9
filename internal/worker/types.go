package worker

import (
	"context"
	"time"

	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/features/document"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/queue"
)

type Chunk struct {
	Content     string
	Vector      []float32
	SourceURL   string
	ChunkIndex  int
	TotalChunks int
}

type Queue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
}

type StatusStore interface {
	Transition(ctx context.Context, url string, status document.Status, errMsg string, chunksCount int) error
}

// Fetcher retrieves a page and reduces it to visible text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Upsert(ctx context.Context, chunks []Chunk) error
	DeleteByURL(ctx context.Context, url string) error
}

type Chunker interface {
	Chunk(text string) []string
}
