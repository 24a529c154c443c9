package document

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

type Repository interface {
	Create(ctx context.Context, url string) (int64, error)
	Transition(ctx context.Context, url string, status Status, errMsg string, chunksCount int) error
	Get(ctx context.Context, url string) (*Document, error)
	List(ctx context.Context) ([]Document, error)
	Count(ctx context.Context) (int, error)
}

type Queue interface {
	Enqueue(ctx context.Context, url string) error
	Length(ctx context.Context) (int64, error)
	IsAvailable(ctx context.Context) bool
}

type Service struct {
	repo  Repository
	queue Queue
}

func NewService(repo Repository, queue Queue) *Service {
	return &Service{repo: repo, queue: queue}
}

// Submit validates the URL, creates (or reuses) its status record and queues
// an ingestion job. Resubmission of a known URL returns the same job id and
// only adds a new job; the worker's eventual terminal transition overwrites
// the record. There is no transaction spanning the two stores: a crash after
// Create leaves a pending row that never progresses until resubmitted.
func (s *Service) Submit(ctx context.Context, rawURL string) (int64, error) {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return 0, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	if !s.queue.IsAvailable(ctx) {
		return 0, ErrQueueUnavailable
	}

	id, err := s.repo.Create(ctx, rawURL)
	if err != nil {
		return 0, err
	}

	if err := s.queue.Enqueue(ctx, rawURL); err != nil {
		return 0, fmt.Errorf("enqueue: %w", err)
	}

	slog.InfoContext(ctx, "url submitted for processing", "url", rawURL, "job_id", id)
	return id, nil
}

// Transition moves a document to a new lifecycle status after checking the
// move against the state machine. The read-then-write is not atomic; races
// between workers resolve last-write-wins, which is acceptable because
// re-processing a URL is idempotent at the chunk-identifier level.
func (s *Service) Transition(ctx context.Context, url string, status Status, errMsg string, chunksCount int) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, status)
	}

	doc, err := s.repo.Get(ctx, url)
	if err != nil {
		return err
	}
	if !CanTransition(doc.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, doc.Status, status)
	}

	return s.repo.Transition(ctx, url, status, errMsg, chunksCount)
}

func (s *Service) Get(ctx context.Context, url string) (*Document, error) {
	return s.repo.Get(ctx, url)
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}
