package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/features/document"
)

const embedTimeout = 60 * time.Second

// Worker drains the ingestion queue: fetch, extract, chunk, embed, index,
// and drive the document's status record to a terminal state.
type Worker struct {
	queue    Queue
	status   StatusStore
	fetcher  Fetcher
	chunker  Chunker
	embedder Embedder
	store    VectorStore

	pollTimeout time.Duration
	backoff     time.Duration
}

func New(queue Queue, status StatusStore, fetcher Fetcher, chunker Chunker, embedder Embedder, store VectorStore, pollTimeout, backoff time.Duration) *Worker {
	return &Worker{
		queue:       queue,
		status:      status,
		fetcher:     fetcher,
		chunker:     chunker,
		embedder:    embedder,
		store:       store,
		pollTimeout: pollTimeout,
		backoff:     backoff,
	}
}

// Run polls until ctx is cancelled. Queue errors back the loop off instead
// of hot-spinning against a dead broker.
func (w *Worker) Run(ctx context.Context) {
	slog.InfoContext(ctx, "worker started", "poll_timeout", w.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "worker stopped")
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			slog.ErrorContext(ctx, "dequeue failed, backing off", "error", err, "backoff", w.backoff)
			select {
			case <-ctx.Done():
			case <-time.After(w.backoff):
			}
			continue
		}
		if job == nil {
			continue
		}

		w.handle(ctx, job.URL)
	}
}

// handle processes one URL end to end. A job for an unknown URL is dropped;
// any other failure lands the document in failed with the message preserved.
func (w *Worker) handle(ctx context.Context, url string) {
	slog.InfoContext(ctx, "processing url", "url", url)

	if err := w.status.Transition(ctx, url, document.StatusProcessing, "", 0); err != nil {
		slog.ErrorContext(ctx, "failed to mark url processing, dropping job", "error", err, "url", url)
		return
	}

	count, err := w.process(ctx, url)
	if err != nil {
		slog.ErrorContext(ctx, "processing failed", "error", err, "url", url)
		if terr := w.status.Transition(ctx, url, document.StatusFailed, err.Error(), 0); terr != nil {
			slog.ErrorContext(ctx, "failed to record failure", "error", terr, "url", url)
		}
		return
	}

	if err := w.status.Transition(ctx, url, document.StatusCompleted, "", count); err != nil {
		slog.ErrorContext(ctx, "failed to mark url completed", "error", err, "url", url)
		return
	}
	slog.InfoContext(ctx, "url processed", "url", url, "chunks", count)
}

func (w *Worker) process(ctx context.Context, url string) (int, error) {
	text, err := w.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if text == "" {
		return 0, errors.New("no textual content extracted")
	}

	pieces := w.chunker.Chunk(text)
	if len(pieces) == 0 {
		return 0, errors.New("no textual content extracted")
	}

	chunks := make([]Chunk, len(pieces))
	for i, content := range pieces {
		embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
		vector, err := w.embedder.Embed(embedCtx, content)
		cancel()
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks[i] = Chunk{
			Content:     content,
			Vector:      vector,
			SourceURL:   url,
			ChunkIndex:  i,
			TotalChunks: len(pieces),
		}
	}

	// Re-ingestion may produce fewer chunks than last time. Clearing the
	// URL's old chunks first keeps the index free of orphans.
	if err := w.store.DeleteByURL(ctx, url); err != nil {
		return 0, fmt.Errorf("clear stale chunks: %w", err)
	}
	if err := w.store.Upsert(ctx, chunks); err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}

	return len(chunks), nil
}
