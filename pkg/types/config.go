// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"math"
	"time"
)

// weightTolerance bounds floating-point drift when validating that a
// weight set sums to 1.0.
const weightTolerance = 1e-9

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// HybridWeights holds the fusion weights for the hybrid method. The three
// weights must sum to 1.0.
type HybridWeights struct {
	// Lexical weights the normalized BM25 score (default 0.30).
	Lexical float64 `json:"lexical" yaml:"lexical"`

	// Dense weights the normalized cosine-similarity score (default 0.50).
	Dense float64 `json:"dense" yaml:"dense"`

	// Authority weights the normalized citation-authority score
	// (default 0.20).
	Authority float64 `json:"authority" yaml:"authority"`
}

// Validate checks that the weights sum to 1.0.
func (w HybridWeights) Validate() error {
	sum := w.Lexical + w.Dense + w.Authority
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("hybrid weights sum to %g, want 1.0", sum)
	}
	return nil
}

// AuthorityMix holds the fusion weights for the pagerank method. The exact
// split is a tunable; both values must sum to 1.0.
type AuthorityMix struct {
	// Lexical weights the normalized BM25 score (default 0.50).
	Lexical float64 `json:"lexical" yaml:"lexical"`

	// Authority weights the normalized citation-authority score
	// (default 0.50).
	Authority float64 `json:"authority" yaml:"authority"`
}

// Validate checks that the mix sums to 1.0.
func (m AuthorityMix) Validate() error {
	sum := m.Lexical + m.Authority
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("authority mix sums to %g, want 1.0", sum)
	}
	return nil
}

// EngineConfig holds settings for the retrieval engine.
type EngineConfig struct {
	// MaxQueryChars bounds the normalized query length (default 2048).
	MaxQueryChars int `json:"max_query_chars" yaml:"max_query_chars"`

	// CandidatePool bounds the Stage-1 candidate set (default 300).
	// Every method, including pure dense and authority ranking, operates
	// only on this pool.
	CandidatePool int `json:"candidate_pool" yaml:"candidate_pool"`

	// CacheSize is the result cache capacity in entries (default 256).
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// DefaultTopK is the result count when the caller does not specify
	// one (default 10).
	DefaultTopK int `json:"default_top_k" yaml:"default_top_k"`

	// Hybrid holds the three-way fusion weights for the hybrid method.
	Hybrid HybridWeights `json:"hybrid" yaml:"hybrid"`

	// Authority holds the two-way mix for the pagerank method.
	Authority AuthorityMix `json:"authority" yaml:"authority"`
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxQueryChars: 2048,
		CandidatePool: 300,
		CacheSize:     256,
		DefaultTopK:   10,
		Hybrid:        HybridWeights{Lexical: 0.30, Dense: 0.50, Authority: 0.20},
		Authority:     AuthorityMix{Lexical: 0.50, Authority: 0.50},
	}
}

// Validate checks bounds and weight sums, filling zero values with
// defaults first is the caller's concern.
func (c EngineConfig) Validate() error {
	if c.MaxQueryChars <= 0 {
		return fmt.Errorf("max_query_chars must be positive, got %d", c.MaxQueryChars)
	}
	if c.CandidatePool <= 0 {
		return fmt.Errorf("candidate_pool must be positive, got %d", c.CandidatePool)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if c.DefaultTopK <= 0 {
		return fmt.Errorf("default_top_k must be positive, got %d", c.DefaultTopK)
	}
	if err := c.Hybrid.Validate(); err != nil {
		return err
	}
	return c.Authority.Validate()
}

// ArtifactConfig holds settings for the artifact store.
type ArtifactConfig struct {
	// DataDir is the directory holding papers.db, lexical.json,
	// vectors.f16.bin, vectors.meta.json, and authority.json.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	// BaseURL is the OpenAI-compatible embeddings endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the embedding model identifier
	// (e.g. "all-MiniLM-L6-v2").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the provider. Empty selects the
	// unauthenticated token used by local services.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single embedding call (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ServerConfig holds settings for the HTTP service layer.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigin is the exact CORS origin to allow. Empty enables the
	// localhost development origins instead.
	AllowedOrigin string `json:"allowed_origin,omitempty" yaml:"allowed_origin,omitempty"`
}

// FetchConfig holds settings for artifact acquisition.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the release location the artifact files are fetched
	// from; filenames are appended to it.
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// ServiceConfig groups all stage configurations.
type ServiceConfig struct {
	Engine    EngineConfig    `json:"engine" yaml:"engine"`
	Artifacts ArtifactConfig  `json:"artifacts" yaml:"artifacts"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch"`
}
