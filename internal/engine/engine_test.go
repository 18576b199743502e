// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-engine/internal/artifact"
	"github.com/pdiddy/scholar-engine/internal/artifact/artifacttest"
	"github.com/pdiddy/scholar-engine/internal/engine"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// stubEmbedder returns one fixed vector and counts calls.
type stubEmbedder struct {
	vec   []float32
	err   error
	calls atomic.Int32
}

func (s *stubEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

func (s *stubEmbedder) Dims() int { return len(s.vec) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, cfg types.EngineConfig, embedder *stubEmbedder) *engine.Engine {
	t.Helper()

	dir := t.TempDir()
	artifacttest.WriteBundle(t, dir, artifacttest.Corpus())
	store := artifact.Open(dir)
	t.Cleanup(func() { store.Close() })

	var e *engine.Engine
	var err error
	if embedder == nil {
		e, err = engine.New(cfg, store, nil, engine.WithLogger(discardLogger()))
	} else {
		e, err = engine.New(cfg, store, embedder, engine.WithLogger(discardLogger()))
	}
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func resultIDs(results []types.SearchResult) []int {
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func TestSearchBM25(t *testing.T) {
	e := newTestEngine(t, types.DefaultEngineConfig(), nil)

	// "graph" appears twice in the clustering paper and once in the
	// ranking paper; raw BM25 must order them that way.
	resp, err := e.Search(context.Background(), "graph", types.MethodBM25, 10)
	require.NoError(t, err)

	assert.Equal(t, "graph", resp.Query)
	assert.Equal(t, types.MethodBM25, resp.Method)
	assert.Equal(t, []int{2, 3}, resultIDs(resp.Results))
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)

	for _, r := range resp.Results {
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Link)
		assert.Equal(t, "bm25", r.Method)
	}
}

func TestSearchBERTReranksCandidates(t *testing.T) {
	// The query vector points at the ranking paper's embedding, so dense
	// re-ranking must invert the lexical order.
	emb := &stubEmbedder{vec: []float32{0, 0, 1, 0}}
	e := newTestEngine(t, types.DefaultEngineConfig(), emb)

	resp, err := e.Search(context.Background(), "graph", types.MethodBERT, 10)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2}, resultIDs(resp.Results))
}

func TestSearchBERTOnlyScoresCandidates(t *testing.T) {
	// The attention paper's embedding matches the query vector exactly,
	// but it shares no term with the query and so never enters the pool.
	emb := &stubEmbedder{vec: []float32{1, 0, 0, 0}}
	e := newTestEngine(t, types.DefaultEngineConfig(), emb)

	resp, err := e.Search(context.Background(), "graph", types.MethodBERT, 10)
	require.NoError(t, err)

	assert.NotContains(t, resultIDs(resp.Results), 0)
}

func TestSearchPageRank(t *testing.T) {
	// With the default even mix the two candidates tie at 0.5 and the
	// ascending-id tie-break decides.
	e := newTestEngine(t, types.DefaultEngineConfig(), nil)

	resp, err := e.Search(context.Background(), "graph", types.MethodPageRank, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, resultIDs(resp.Results))
	assert.InDelta(t, 0.5, resp.Results[0].Score, 1e-9)
}

func TestSearchPageRankMixConfigurable(t *testing.T) {
	cfg := types.DefaultEngineConfig()
	cfg.Authority = types.AuthorityMix{Lexical: 0.3, Authority: 0.7}
	e := newTestEngine(t, cfg, nil)

	// The ranking paper carries ten times the authority of the clustering
	// paper; weighting authority up flips the order.
	resp, err := e.Search(context.Background(), "graph", types.MethodPageRank, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, resultIDs(resp.Results))
	assert.InDelta(t, 0.7, resp.Results[0].Score, 1e-9)
}

func TestSearchHybrid(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 0, 1, 0}}
	e := newTestEngine(t, types.DefaultEngineConfig(), emb)

	resp, err := e.Search(context.Background(), "graph", types.MethodHybrid, 10)
	require.NoError(t, err)

	// Normalized signals over the two candidates: lexical favors the
	// clustering paper, dense and authority both favor the ranking paper.
	// 0.5 + 0.2 beats 0.3.
	require.Equal(t, []int{3, 2}, resultIDs(resp.Results))
	assert.InDelta(t, 0.7, resp.Results[0].Score, 1e-9)
	assert.InDelta(t, 0.3, resp.Results[1].Score, 1e-9)
}

func TestSearchHybridZeroDenseMatchesPageRank(t *testing.T) {
	// With the dense weight zeroed and the remaining mass split 0.6/0.4,
	// hybrid must reproduce the pagerank ranking under the same mix.
	hybridCfg := types.DefaultEngineConfig()
	hybridCfg.Hybrid = types.HybridWeights{Lexical: 0.6, Dense: 0, Authority: 0.4}
	hybrid := newTestEngine(t, hybridCfg, &stubEmbedder{vec: []float32{0, 0, 1, 0}})

	authorityCfg := types.DefaultEngineConfig()
	authorityCfg.Authority = types.AuthorityMix{Lexical: 0.6, Authority: 0.4}
	pagerank := newTestEngine(t, authorityCfg, nil)

	ctx := context.Background()
	for _, query := range []string{"graph", "graph clustering", "attention"} {
		hybridResp, err := hybrid.Search(ctx, query, types.MethodHybrid, 10)
		require.NoError(t, err)
		pagerankResp, err := pagerank.Search(ctx, query, types.MethodPageRank, 10)
		require.NoError(t, err)

		require.Equal(t, resultIDs(pagerankResp.Results), resultIDs(hybridResp.Results),
			"query %q", query)
		for i := range hybridResp.Results {
			assert.InDelta(t, pagerankResp.Results[i].Score, hybridResp.Results[i].Score, 1e-12,
				"query %q rank %d", query, i)
		}
	}
}

func TestSearchDeterministic(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 0.6, 0.8, 0}}
	e := newTestEngine(t, types.DefaultEngineConfig(), emb)

	first, err := e.Search(context.Background(), "graph clustering", types.MethodHybrid, 10)
	require.NoError(t, err)

	// Second engine over the same bundle, no shared cache.
	second := newTestEngine(t, types.DefaultEngineConfig(), &stubEmbedder{vec: []float32{0, 0.6, 0.8, 0}})
	resp, err := second.Search(context.Background(), "graph clustering", types.MethodHybrid, 10)
	require.NoError(t, err)

	assert.Equal(t, first.Results, resp.Results)
}

func TestSearchCacheHit(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 0, 1, 0}}
	e := newTestEngine(t, types.DefaultEngineConfig(), emb)
	ctx := context.Background()

	first, err := e.Search(ctx, "graph", types.MethodHybrid, 10)
	require.NoError(t, err)
	require.Equal(t, int32(1), emb.calls.Load())

	// Identical request: served from cache, no second embedding call.
	second, err := e.Search(ctx, "  graph  ", types.MethodHybrid, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(1), emb.calls.Load())
	assert.Equal(t, first.Results, second.Results)

	// A different bound is a different cache entry.
	_, err = e.Search(ctx, "graph", types.MethodHybrid, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), emb.calls.Load())
}

func TestSearchTopKClamp(t *testing.T) {
	cfg := types.DefaultEngineConfig()
	cfg.CandidatePool = 50
	e := newTestEngine(t, cfg, nil)

	resp, err := e.Search(context.Background(), "graph", types.MethodBM25, 500)
	require.NoError(t, err)

	// The bound can never exceed the candidate pool.
	assert.Equal(t, 50, resp.TopK)
}

func TestSearchTruncates(t *testing.T) {
	e := newTestEngine(t, types.DefaultEngineConfig(), nil)

	resp, err := e.Search(context.Background(), "graph", types.MethodBM25, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, resultIDs(resp.Results))
}

func TestSearchValidation(t *testing.T) {
	e := newTestEngine(t, types.DefaultEngineConfig(), nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		query  string
		method types.Method
		topK   int
	}{
		{"empty query", "", types.MethodBM25, 10},
		{"whitespace query", "   \t  ", types.MethodBM25, 10},
		{"unknown method", "graph", types.Method("lda"), 10},
		{"zero top_k", "graph", types.MethodBM25, 0},
		{"negative top_k", "graph", types.MethodBM25, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Search(ctx, tt.query, tt.method, tt.topK)
			var validation *engine.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestSearchNoLexicalMatches(t *testing.T) {
	e := newTestEngine(t, types.DefaultEngineConfig(), nil)

	resp, err := e.Search(context.Background(), "zzyzx", types.MethodBM25, 10)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearchQueryNormalized(t *testing.T) {
	e := newTestEngine(t, types.DefaultEngineConfig(), nil)

	resp, err := e.Search(context.Background(), "  graph \t  clustering ", types.MethodBM25, 10)
	require.NoError(t, err)
	assert.Equal(t, "graph clustering", resp.Query)
}

func TestSearchVectorsUnavailable(t *testing.T) {
	// Bundle without the vector table: dense methods degrade to 503
	// territory while the lexical method keeps working.
	dir := t.TempDir()
	docs := artifacttest.Corpus()
	artifacttest.WritePapers(t, dir, docs)
	artifacttest.WriteLexical(t, dir, docs)
	artifacttest.WriteAuthority(t, dir, docs)

	store := artifact.Open(dir)
	t.Cleanup(func() { store.Close() })

	emb := &stubEmbedder{vec: []float32{0, 0, 1, 0}}
	e, err := engine.New(types.DefaultEngineConfig(), store, emb, engine.WithLogger(discardLogger()))
	require.NoError(t, err)
	t.Cleanup(e.Close)

	ctx := context.Background()

	_, err = e.Search(ctx, "graph", types.MethodBERT, 10)
	assert.ErrorIs(t, err, artifact.ErrUnavailable)

	_, err = e.Search(ctx, "graph", types.MethodHybrid, 10)
	assert.ErrorIs(t, err, artifact.ErrUnavailable)

	resp, err := e.Search(ctx, "graph", types.MethodBM25, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)

	resp, err = e.Search(ctx, "graph", types.MethodPageRank, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
}

func TestSearchNoEmbedderConfigured(t *testing.T) {
	e := newTestEngine(t, types.DefaultEngineConfig(), nil)

	// Not configured is a missing capability, not a provider failure.
	_, err := e.Search(context.Background(), "graph", types.MethodBERT, 10)
	require.ErrorIs(t, err, artifact.ErrUnavailable)

	var unavail *artifact.UnavailableError
	require.ErrorAs(t, err, &unavail)
	assert.Equal(t, artifact.NameEmbedding, unavail.Artifact)
}

func TestSearchEmbedderFails(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 0, 1, 0}, err: fmt.Errorf("connection refused")}
	e := newTestEngine(t, types.DefaultEngineConfig(), emb)

	_, err := e.Search(context.Background(), "graph", types.MethodBERT, 10)
	var upstream *engine.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Error(), "connection refused")
}

func TestSearchEmbedderDimsMismatch(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{1, 0}} // table has 4 dims
	e := newTestEngine(t, types.DefaultEngineConfig(), emb)

	_, err := e.Search(context.Background(), "graph", types.MethodBERT, 10)
	var upstream *engine.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Error(), "dimensions")
}

func TestSearchCancelledContext(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 0, 1, 0}}
	e := newTestEngine(t, types.DefaultEngineConfig(), emb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Search(ctx, "graph", types.MethodHybrid, 10)
	assert.ErrorIs(t, err, context.Canceled)

	// The abandoned request left no cache entry: the retry does the full
	// pipeline again, including the embedding call.
	before := emb.calls.Load()
	resp, err := e.Search(context.Background(), "graph", types.MethodHybrid, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
	assert.Greater(t, emb.calls.Load(), before)
}

func TestSearchConsistencyFault(t *testing.T) {
	// Lexical index covers five papers but the paper table only holds
	// two: a ranked id with no metadata row is a corrupt bundle.
	dir := t.TempDir()
	docs := artifacttest.Corpus()
	artifacttest.WritePapers(t, dir, docs[:2])
	artifacttest.WriteLexical(t, dir, docs)
	artifacttest.WriteVectors(t, dir, docs)
	artifacttest.WriteAuthority(t, dir, docs)

	store := artifact.Open(dir)
	t.Cleanup(func() { store.Close() })

	e, err := engine.New(types.DefaultEngineConfig(), store, nil, engine.WithLogger(discardLogger()))
	require.NoError(t, err)
	t.Cleanup(e.Close)

	_, err = e.Search(context.Background(), "graph", types.MethodBM25, 10)
	var consistency *engine.ConsistencyError
	require.ErrorAs(t, err, &consistency)
	assert.Equal(t, 2, consistency.ID)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := types.DefaultEngineConfig()
	cfg.Hybrid = types.HybridWeights{Lexical: 0.5, Dense: 0.5, Authority: 0.5}

	dir := t.TempDir()
	store := artifact.Open(dir)
	t.Cleanup(func() { store.Close() })

	_, err := engine.New(cfg, store, nil)
	assert.Error(t, err)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := engine.New(types.DefaultEngineConfig(), nil, nil)
	assert.Error(t, err)
}
