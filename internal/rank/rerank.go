// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

// VectorSource supplies one stored embedding row per paper id.
type VectorSource func(id int) ([]float32, error)

// AuthoritySource supplies one precomputed authority score per paper id.
type AuthoritySource func(id int) (float64, error)

// DenseScores computes the cosine similarity between the query vector and
// each candidate's stored vector. Scoring is per-candidate independent, so
// when a worker pool is supplied the candidates are scored in parallel;
// a nil pool scores serially. Only the candidate rows are read, never the
// rest of the table.
func DenseScores(ctx context.Context, pool *ants.Pool, query []float32, ids []int, source VectorSource) ([]types.CandidateScore, error) {
	out := make([]types.CandidateScore, len(ids))
	errs := make([]error, len(ids))

	scoreOne := func(i int) {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			return
		}
		row, err := source(ids[i])
		if err != nil {
			errs[i] = err
			return
		}
		sim, err := Cosine(query, row)
		if err != nil {
			errs[i] = err
			return
		}
		out[i] = types.CandidateScore{ID: ids[i], Score: sim}
	}

	if pool == nil {
		for i := range ids {
			scoreOne(i)
		}
	} else {
		var wg sync.WaitGroup
		for i := range ids {
			wg.Add(1)
			i := i
			if err := pool.Submit(func() {
				defer wg.Done()
				scoreOne(i)
			}); err != nil {
				// Pool rejected the task; score inline.
				scoreOne(i)
				wg.Done()
			}
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AuthorityScores looks up the precomputed authority score for each
// candidate. No computation happens at query time beyond the lookup.
func AuthorityScores(ids []int, source AuthoritySource) ([]types.CandidateScore, error) {
	out := make([]types.CandidateScore, len(ids))
	for i, id := range ids {
		score, err := source(id)
		if err != nil {
			return nil, err
		}
		out[i] = types.CandidateScore{ID: id, Score: score}
	}
	return out, nil
}

// Cosine returns the cosine similarity of two equal-length vectors.
// A zero vector yields similarity 0 rather than NaN.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
