// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint. Local
// services (text-embeddings-inference, Ollama's OpenAI facade) work with
// an empty API key.
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
	dims     int
}

// NewOpenAIEmbedder builds the provider from configuration. dims is the
// vector length the artifact store expects; responses of any other length
// are rejected by the caller.
func NewOpenAIEmbedder(cfg types.EmbeddingConfig, dims int) (*OpenAIEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedding base_url is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	token := cfg.APIKey
	if token == "" {
		// langchaingo requires a non-empty token even for
		// unauthenticated local services.
		token = "none"
	}

	opts := []openai.Option{
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &OpenAIEmbedder{embedder: embedder, dims: dims}, nil
}

// Embed returns the query vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if e.dims > 0 && len(vec) != e.dims {
		return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(vec), e.dims)
	}
	return vec, nil
}

// Dims reports the expected vector length.
func (e *OpenAIEmbedder) Dims() int { return e.dims }
