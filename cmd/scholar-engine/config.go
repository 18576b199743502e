// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-engine/internal/artifact"
	"github.com/pdiddy/scholar-engine/internal/embed"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// setConfigDefaults registers every config key with its default so a
// missing or partial config file still yields a complete ServiceConfig.
func setConfigDefaults() {
	def := types.DefaultEngineConfig()

	viper.SetDefault("engine.max_query_chars", def.MaxQueryChars)
	viper.SetDefault("engine.candidate_pool", def.CandidatePool)
	viper.SetDefault("engine.cache_size", def.CacheSize)
	viper.SetDefault("engine.default_top_k", def.DefaultTopK)
	viper.SetDefault("engine.hybrid.lexical", def.Hybrid.Lexical)
	viper.SetDefault("engine.hybrid.dense", def.Hybrid.Dense)
	viper.SetDefault("engine.hybrid.authority", def.Hybrid.Authority)
	viper.SetDefault("engine.authority.lexical", def.Authority.Lexical)
	viper.SetDefault("engine.authority.authority", def.Authority.Authority)

	viper.SetDefault("artifacts.data_dir", "data")

	viper.SetDefault("embedding.base_url", "")
	viper.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	viper.SetDefault("embedding.api_key", "")
	viper.SetDefault("embedding.timeout", "10s")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.allowed_origin", "")

	viper.SetDefault("fetch.base_url", "")
	viper.SetDefault("fetch.timeout", "60s")
	viper.SetDefault("fetch.user_agent", "scholar-engine/"+version)
}

// serviceConfig assembles the full configuration from viper: defaults,
// then config file, then SCHOLAR_ENGINE_* environment overrides.
func serviceConfig() types.ServiceConfig {
	return types.ServiceConfig{
		Engine: types.EngineConfig{
			MaxQueryChars: viper.GetInt("engine.max_query_chars"),
			CandidatePool: viper.GetInt("engine.candidate_pool"),
			CacheSize:     viper.GetInt("engine.cache_size"),
			DefaultTopK:   viper.GetInt("engine.default_top_k"),
			Hybrid: types.HybridWeights{
				Lexical:   viper.GetFloat64("engine.hybrid.lexical"),
				Dense:     viper.GetFloat64("engine.hybrid.dense"),
				Authority: viper.GetFloat64("engine.hybrid.authority"),
			},
			Authority: types.AuthorityMix{
				Lexical:   viper.GetFloat64("engine.authority.lexical"),
				Authority: viper.GetFloat64("engine.authority.authority"),
			},
		},
		Artifacts: types.ArtifactConfig{
			DataDir: viper.GetString("artifacts.data_dir"),
		},
		Embedding: types.EmbeddingConfig{
			BaseURL: viper.GetString("embedding.base_url"),
			Model:   viper.GetString("embedding.model"),
			APIKey:  secretDefault("embedding-api-key", viper.GetString("embedding.api_key")),
			Timeout: viper.GetDuration("embedding.timeout"),
		},
		Server: types.ServerConfig{
			Addr:          viper.GetString("server.addr"),
			AllowedOrigin: viper.GetString("server.allowed_origin"),
		},
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("fetch.timeout"),
				UserAgent: viper.GetString("fetch.user_agent"),
			},
			BaseURL: viper.GetString("fetch.base_url"),
		},
	}
}

// newLogger builds the process logger. Level comes from
// SCHOLAR_ENGINE_LOG_LEVEL via viper's env binding.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch viper.GetString("log_level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildEmbedder constructs the embedding provider, or returns nil when no
// endpoint is configured. Without one the bm25 and pagerank methods still
// serve; bert and hybrid report the provider as unavailable.
func buildEmbedder(cfg types.EmbeddingConfig, store *artifact.Store, logger *slog.Logger) (embed.Embedder, error) {
	if cfg.BaseURL == "" {
		logger.Warn("no embedding endpoint configured; bert and hybrid methods are disabled")
		return nil, nil
	}

	// The vector table fixes the expected dimensionality. When the bundle
	// is not fetched yet, accept any length and let queries validate.
	dims, err := store.VectorDims()
	if err != nil {
		dims = 0
	}

	e, err := embed.NewOpenAIEmbedder(cfg, dims)
	if err != nil {
		return nil, fmt.Errorf("configuring embedding provider: %w", err)
	}
	return e, nil
}

// httpTimeout returns d or a sane floor for interactive commands.
func httpTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 60 * time.Second
	}
	return d
}
