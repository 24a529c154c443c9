package document

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/middleware"
)

// ChunkCounter reports how many chunks the retrieval index holds.
type ChunkCounter interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	service *Service
	queue   Queue
	chunks  ChunkCounter
}

func NewHandler(service *Service, queue Queue, chunks ChunkCounter) *Handler {
	return &Handler{service: service, queue: queue, chunks: chunks}
}

// Health reports liveness plus queue connectivity and index size.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.chunks.Count(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to count indexed documents", "error", err)
		total = 0
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"redisConnected": h.queue.IsAvailable(ctx),
		"totalDocuments": total,
	})
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "url is required", http.StatusBadRequest)
		return
	}

	jobID, err := h.service.Submit(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidURL):
			h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrQueueUnavailable):
			h.writeError(r.Context(), w, "UNAVAILABLE", err.Error(), http.StatusServiceUnavailable)
		default:
			slog.ErrorContext(r.Context(), "submit failed", "error", err, "url", req.URL)
			h.writeError(r.Context(), w, "INTERNAL_ERROR", "failed to submit URL", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "URL submitted for processing",
		"url":     req.URL,
		"status":  string(StatusPending),
		"jobId":   jobID,
	})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	url := restoreScheme(r.PathValue("url"))

	doc, err := h.service.Get(r.Context(), url)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeError(r.Context(), w, "NOT_FOUND", "URL not found", http.StatusNotFound)
			return
		}
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) ListStatus(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []Document{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalUrls": len(docs),
		"urls":      docs,
	})
}

func (h *Handler) QueueInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	length, err := h.queue.Length(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to read queue length", "error", err)
		length = 0
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"queueLength":    length,
		"redisConnected": h.queue.IsAvailable(ctx),
	})
}

// restoreScheme repairs a URL captured from a wildcard path segment. ServeMux
// collapses "//" so "https://x" arrives as "https:/x".
func restoreScheme(raw string) string {
	if i := strings.Index(raw, ":/"); i >= 0 && !strings.Contains(raw, "://") {
		return raw[:i] + "://" + raw[i+2:]
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	})
}
