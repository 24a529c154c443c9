package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/adapter/gemini"
	wstore "github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/adapter/weaviate"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/app"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/config"
	"github.com/fr0styyXD/AiRA-Web-Aware-RAG/internal/testutils"
)

func TestSmoke_Startup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping smoke test in short mode")
	}

	// 1. Start Infrastructure
	suite := testutils.NewIntegrationSuite(t)
	suite.Setup()
	defer suite.Teardown()

	vecStore := wstore.NewStore(suite.Weaviate)
	require.NoError(t, vecStore.EnsureSchema(context.Background()))

	// The health endpoint never touches Gemini, a placeholder key is enough.
	geminiClient, err := gemini.NewClient(context.Background(), "smoke-test-key")
	require.NoError(t, err)
	defer geminiClient.Close()

	deps := &app.Dependencies{
		DB:          suite.DB,
		Redis:       suite.Redis,
		VectorStore: vecStore,
		Gemini:      geminiClient,
	}

	cfg := &config.Config{
		QueueName:            "url_processing_queue",
		ServerPort:           8099,
		ChunkSize:            500,
		ChunkOverlap:         50,
		FetchTimeoutSeconds:  30,
		PollTimeoutSeconds:   1,
		WorkerBackoffSeconds: 1,
	}

	a, err := app.New(cfg, deps)
	require.NoError(t, err)

	// 2. Run App in Background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.Worker.Run(ctx)
	go func() {
		if err := a.Run(ctx); err != nil {
			t.Logf("app run exited: %v", err)
		}
	}()

	// 3. Wait for Health Check
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://localhost:8099/")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 500*time.Millisecond)
}
