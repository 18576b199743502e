// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine orchestrates one search request: normalize, consult the
// result cache, generate the lexical candidate pool, re-rank it per the
// selected method, fuse scores, and format results. The engine is the
// single place that enforces the two-phase contract: Stage-1 always runs
// first, and Stage-2 and fusion only ever see the Stage-1 candidate set.
//
// See docs/ARCHITECTURE § Retrieval Pipeline.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/scholar-engine/internal/artifact"
	"github.com/pdiddy/scholar-engine/internal/cache"
	"github.com/pdiddy/scholar-engine/internal/embed"
	"github.com/pdiddy/scholar-engine/internal/rank"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// Engine serves concurrent search requests against shared immutable
// artifacts. The result cache is the only mutable shared state.
type Engine struct {
	cfg      types.EngineConfig
	store    *artifact.Store
	embedder embed.Embedder
	results  *cache.ResultCache
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds an engine over the given artifact store and embedding
// provider. The embedder may be nil when only the bm25 and pagerank
// methods will be used.
func New(cfg types.EngineConfig, store *artifact.Store, embedder embed.Embedder, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("artifact store is required")
	}

	results, err := cache.New(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(runtime.NumCPU())
	if err != nil {
		return nil, fmt.Errorf("creating scoring pool: %w", err)
	}

	e := &Engine{
		cfg:      cfg,
		store:    store,
		embedder: embedder,
		results:  results,
		pool:     pool,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the scoring pool. The artifact store is owned by the
// caller.
func (e *Engine) Close() {
	e.pool.Release()
}

// Search runs one query. Validation failures surface as *ValidationError
// before any stage executes; a missing artifact or unconfigured embedding
// provider for the selected method surfaces as *artifact.UnavailableError;
// embedding call failures as *UpstreamError. A cancelled context returns
// ctx.Err() and never populates the cache.
func (e *Engine) Search(ctx context.Context, query string, method types.Method, topK int) (types.SearchResponse, error) {
	if _, err := types.ParseMethod(string(method)); err != nil {
		return types.SearchResponse{}, &ValidationError{Reason: err.Error()}
	}
	if topK <= 0 {
		return types.SearchResponse{}, &ValidationError{Reason: fmt.Sprintf("top_k must be positive, got %d", topK)}
	}
	if topK > e.cfg.CandidatePool {
		topK = e.cfg.CandidatePool
	}

	normalized := NormalizeQuery(query, e.cfg.MaxQueryChars)
	if normalized == "" {
		return types.SearchResponse{}, &ValidationError{Reason: "query must not be empty"}
	}

	resp := types.SearchResponse{
		Query:  normalized,
		Method: method,
		TopK:   topK,
	}

	key := cache.Key{Query: normalized, Method: method, TopK: topK}
	if cached, ok := e.results.Get(key); ok {
		e.logger.Debug("cache hit", "method", method, "top_k", topK)
		resp.Results = cached
		return resp, nil
	}

	ranked, err := e.rank(ctx, normalized, method, topK)
	if err != nil {
		return types.SearchResponse{}, err
	}

	results, err := e.format(ctx, ranked, method)
	if err != nil {
		return types.SearchResponse{}, err
	}

	// An abandoned request must not leave a partial entry behind.
	if err := ctx.Err(); err != nil {
		return types.SearchResponse{}, err
	}
	e.results.Put(key, results)

	resp.Results = results
	return resp, nil
}

// rank runs Stage-1 and the method-dependent Stage-2/fusion, returning
// the final ordered, truncated candidate list.
func (e *Engine) rank(ctx context.Context, query string, method types.Method, topK int) ([]types.CandidateScore, error) {
	// Stage-1 runs for every method: the lexical pass is the only stage
	// cheap enough to touch the full corpus.
	scores, err := e.store.LexicalScores(query)
	if err != nil {
		return nil, err
	}
	candidates := rank.TopCandidates(scores, e.cfg.CandidatePool)
	if len(candidates) == 0 {
		return nil, nil
	}
	ids := rank.IDs(candidates)

	switch method {
	case types.MethodBM25:
		// Raw lexical scores are the final scores.
		return rank.Truncate(candidates, topK), nil

	case types.MethodBERT:
		dense, err := e.denseScores(ctx, query, ids)
		if err != nil {
			return nil, err
		}
		ranked := rank.Fuse(ids, rank.Signal{Weight: 1.0, Scores: rank.Normalize(dense)})
		return rank.Truncate(ranked, topK), nil

	case types.MethodPageRank:
		auth, err := rank.AuthorityScores(ids, e.store.AuthorityScore)
		if err != nil {
			return nil, err
		}
		ranked := rank.Fuse(ids,
			rank.Signal{Weight: e.cfg.Authority.Lexical, Scores: rank.Normalize(candidates)},
			rank.Signal{Weight: e.cfg.Authority.Authority, Scores: rank.Normalize(auth)},
		)
		return rank.Truncate(ranked, topK), nil

	case types.MethodHybrid:
		dense, err := e.denseScores(ctx, query, ids)
		if err != nil {
			return nil, err
		}
		auth, err := rank.AuthorityScores(ids, e.store.AuthorityScore)
		if err != nil {
			return nil, err
		}
		ranked := rank.Fuse(ids,
			rank.Signal{Weight: e.cfg.Hybrid.Lexical, Scores: rank.Normalize(candidates)},
			rank.Signal{Weight: e.cfg.Hybrid.Dense, Scores: rank.Normalize(dense)},
			rank.Signal{Weight: e.cfg.Hybrid.Authority, Scores: rank.Normalize(auth)},
		)
		return rank.Truncate(ranked, topK), nil
	}

	return nil, &ValidationError{Reason: fmt.Sprintf("unknown method %q", method)}
}

// denseScores obtains the query vector from the embedding provider and
// scores the candidate rows against it.
func (e *Engine) denseScores(ctx context.Context, query string, ids []int) ([]types.CandidateScore, error) {
	// A never-configured provider is a missing capability, not a provider
	// failure: callers see the same unavailable condition as a missing
	// artifact and can map it to degraded service.
	if e.embedder == nil {
		return nil, &artifact.UnavailableError{
			Artifact: artifact.NameEmbedding,
			Err:      fmt.Errorf("no embedding provider configured"),
		}
	}

	dims, err := e.store.VectorDims()
	if err != nil {
		return nil, err
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UpstreamError{Err: err}
	}
	if len(vec) != dims {
		return nil, &UpstreamError{Err: fmt.Errorf("embedding has %d dimensions, vector table has %d", len(vec), dims)}
	}

	return rank.DenseScores(ctx, e.pool, vec, ids, e.store.VectorRow)
}

// format resolves ranked ids against the paper table and attaches scores.
func (e *Engine) format(ctx context.Context, ranked []types.CandidateScore, method types.Method) ([]types.SearchResult, error) {
	results := make([]types.SearchResult, 0, len(ranked))
	for _, c := range ranked {
		paper, err := e.store.PaperByID(ctx, c.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				e.logger.Error("ranked paper missing from paper table", "id", c.ID)
				return nil, &ConsistencyError{ID: c.ID}
			}
			return nil, err
		}
		results = append(results, types.SearchResult{
			ID:       paper.ID,
			Title:    paper.Title,
			Abstract: paper.Abstract,
			Link:     paper.Link,
			Score:    c.Score,
			Method:   string(method),
		})
	}
	return results, nil
}
