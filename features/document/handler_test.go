package document

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChunkCounter struct {
	mock.Mock
}

func (m *MockChunkCounter) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newTestHandler() (*Handler, *MockRepository, *MockQueue, *MockChunkCounter) {
	repo := new(MockRepository)
	queue := new(MockQueue)
	chunks := new(MockChunkCounter)
	svc := NewService(repo, queue)
	return NewHandler(svc, queue, chunks), repo, queue, chunks
}

func newMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Health)
	mux.HandleFunc("POST /ingest-url", h.Ingest)
	mux.HandleFunc("GET /status", h.ListStatus)
	mux.HandleFunc("GET /status/{url...}", h.GetStatus)
	mux.HandleFunc("GET /queue-info", h.QueueInfo)
	return mux
}

func TestHandler_Health(t *testing.T) {
	h, _, queue, chunks := newTestHandler()
	queue.On("IsAvailable", mock.Anything).Return(true)
	chunks.On("Count", mock.Anything).Return(12, nil)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	newMux(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["redisConnected"])
	assert.Equal(t, float64(12), body["totalDocuments"])
}

func TestHandler_Ingest(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		h, repo, queue, _ := newTestHandler()
		queue.On("IsAvailable", mock.Anything).Return(true)
		repo.On("Create", mock.Anything, "https://example.com/a").Return(int64(1), nil)
		queue.On("Enqueue", mock.Anything, "https://example.com/a").Return(nil)

		req := httptest.NewRequest("POST", "/ingest-url", strings.NewReader(`{"url":"https://example.com/a"}`))
		w := httptest.NewRecorder()
		newMux(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, "https://example.com/a", body["url"])
		assert.Equal(t, float64(1), body["jobId"])
	})

	t.Run("Missing URL", func(t *testing.T) {
		h, _, _, _ := newTestHandler()

		req := httptest.NewRequest("POST", "/ingest-url", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		newMux(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Malformed URL", func(t *testing.T) {
		h, _, _, _ := newTestHandler()

		req := httptest.NewRequest("POST", "/ingest-url", strings.NewReader(`{"url":"not a url"}`))
		w := httptest.NewRecorder()
		newMux(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Queue down returns 503", func(t *testing.T) {
		h, _, queue, _ := newTestHandler()
		queue.On("IsAvailable", mock.Anything).Return(false)

		req := httptest.NewRequest("POST", "/ingest-url", strings.NewReader(`{"url":"https://example.com/a"}`))
		w := httptest.NewRecorder()
		newMux(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandler_GetStatus(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		h, repo, _, _ := newTestHandler()
		now := time.Now()
		repo.On("Get", mock.Anything, "https://example.com/a").Return(&Document{
			ID: 1, URL: "https://example.com/a", Status: StatusCompleted,
			CreatedAt: now, UpdatedAt: now, ChunksCount: 3,
		}, nil)

		req := httptest.NewRequest("GET", "/status/https%3A%2F%2Fexample.com%2Fa", nil)
		w := httptest.NewRecorder()
		newMux(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, float64(3), body["chunksCount"])
		_, hasErr := body["errorMessage"]
		assert.False(t, hasErr, "errorMessage must be omitted unless failed")
	})

	t.Run("Collapsed scheme separator is repaired", func(t *testing.T) {
		h, repo, _, _ := newTestHandler()
		now := time.Now()
		repo.On("Get", mock.Anything, "https://example.com/a").Return(&Document{
			ID: 1, URL: "https://example.com/a", Status: StatusPending,
			CreatedAt: now, UpdatedAt: now,
		}, nil)

		// what ServeMux hands the route after cleaning "https://..."
		req := httptest.NewRequest("GET", "/status/https:/example.com/a", nil)
		w := httptest.NewRecorder()
		newMux(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		repo.AssertCalled(t, "Get", mock.Anything, "https://example.com/a")
	})

	t.Run("Not found", func(t *testing.T) {
		h, repo, _, _ := newTestHandler()
		repo.On("Get", mock.Anything, mock.Anything).Return(nil, ErrNotFound)

		req := httptest.NewRequest("GET", "/status/https%3A%2F%2Fexample.com%2Fmissing", nil)
		w := httptest.NewRecorder()
		newMux(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_ListStatus(t *testing.T) {
	h, repo, _, _ := newTestHandler()
	now := time.Now()
	repo.On("List", mock.Anything).Return([]Document{
		{ID: 2, URL: "https://example.com/b", Status: StatusPending, CreatedAt: now, UpdatedAt: now},
		{ID: 1, URL: "https://example.com/a", Status: StatusCompleted, CreatedAt: now, UpdatedAt: now, ChunksCount: 3},
	}, nil)

	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()
	newMux(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TotalUrls int        `json:"totalUrls"`
		Urls      []Document `json:"urls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.TotalUrls)
	assert.Len(t, body.Urls, 2)
}

func TestHandler_ListStatus_Empty(t *testing.T) {
	h, repo, _, _ := newTestHandler()
	repo.On("List", mock.Anything).Return([]Document(nil), nil)

	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()
	newMux(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"urls":[]`)
}

func TestHandler_QueueInfo(t *testing.T) {
	h, _, queue, _ := newTestHandler()
	queue.On("Length", mock.Anything).Return(int64(4), nil)
	queue.On("IsAvailable", mock.Anything).Return(true)

	req := httptest.NewRequest("GET", "/queue-info", nil)
	w := httptest.NewRecorder()
	newMux(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(4), body["queueLength"])
	assert.Equal(t, true, body["redisConnected"])
}
