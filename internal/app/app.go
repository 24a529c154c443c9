package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/features/document"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/features/query"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/config"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/middleware"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/queue"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/scraper"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/text"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/worker"
)

type App struct {
	Handler http.Handler
	Worker  *worker.Worker

	port int
}

func New(cfg *config.Config, deps *Dependencies) (*App, error) {
	chunker, err := text.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	jobQueue := queue.NewRedisQueue(deps.Redis, cfg.QueueName)
	fetcher := scraper.New(time.Duration(cfg.FetchTimeoutSeconds) * time.Second)

	// Feature: Document
	documentRepo := document.NewPostgresRepo(deps.DB)
	documentService := document.NewService(documentRepo, jobQueue)
	documentHandler := document.NewHandler(documentService, jobQueue, deps.VectorStore)

	// Feature: Query
	queryService := query.NewService(deps.Gemini, deps.VectorStore, deps.Gemini)
	queryHandler := query.NewHandler(queryService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", middleware.CorrelationID(enableCORS(documentHandler.Health)))
	mux.Handle("POST /ingest-url", middleware.CorrelationID(enableCORS(documentHandler.Ingest)))
	mux.Handle("GET /status", middleware.CorrelationID(enableCORS(documentHandler.ListStatus)))
	mux.Handle("GET /status/{url...}", middleware.CorrelationID(enableCORS(documentHandler.GetStatus)))
	mux.Handle("GET /queue-info", middleware.CorrelationID(enableCORS(documentHandler.QueueInfo)))

	mux.Handle("POST /query", middleware.CorrelationID(enableCORS(queryHandler.Ask)))

	// Worker
	w := worker.New(
		jobQueue,
		documentService,
		fetcher,
		chunker,
		deps.Gemini,
		deps.VectorStore,
		time.Duration(cfg.PollTimeoutSeconds)*time.Second,
		time.Duration(cfg.WorkerBackoffSeconds)*time.Second,
	)

	return &App{
		Handler: mux,
		Worker:  w,
		port:    cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
