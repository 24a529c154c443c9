package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/app"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/config"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/logger"
)

func main() {
	// Initialize structured logger
	base := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(logger.NewContextHandler(base.Handler())))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	a, err := app.New(cfg, deps)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup

	if cfg.EnableWorker {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Worker.Run(ctx)
		}()
	}

	if cfg.EnableAPI {
		if err := a.Run(ctx); err != nil {
			slog.Error("server error", "error", err)
			stop()
			wg.Wait()
			os.Exit(1)
		}
	} else if cfg.EnableWorker {
		<-ctx.Done()
	} else {
		slog.Error("nothing to run: both ENABLE_API and ENABLE_WORKER are false")
		os.Exit(1)
	}

	wg.Wait()
	slog.Info("shutdown complete")
}
