package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	embedModel = "gemini-embedding-001"
	genModel   = "gemini-2.0-flash"

	// Generation knobs for grounded answering.
	temperature     = 0.7
	maxOutputTokens = 500
)

// Client embeds text and generates completions against the Gemini API.
type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	slog.DebugContext(ctx, "embedding content", "model", embedModel, "length", len(text))
	em := c.client.EmbeddingModel(embedModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err)
		return nil, err
	}
	if res.Embedding == nil {
		return nil, errors.New("empty embedding response")
	}
	return res.Embedding.Values, nil
}

func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	model := c.client.GenerativeModel(genModel)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxOutputTokens)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "error", err)
		return "", err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in generation response")
	}

	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
