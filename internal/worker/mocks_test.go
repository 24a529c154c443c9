package worker

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/features/document"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/queue"
)

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error) {
	args := m.Called(ctx, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Job), args.Error(1)
}

type MockStatusStore struct {
	mock.Mock
}

func (m *MockStatusStore) Transition(ctx context.Context, url string, status document.Status, errMsg string, chunksCount int) error {
	args := m.Called(ctx, url, status, errMsg, chunksCount)
	return args.Error(0)
}

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) Upsert(ctx context.Context, chunks []Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockVectorStore) DeleteByURL(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
