// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import "github.com/pdiddy/scholar-engine/pkg/types"

// Normalize rescales a candidate score set to [0,1] by min-max over the
// set itself. When every raw score is equal the signal cannot
// discriminate, and every candidate normalizes to 1.0 rather than
// dividing by zero.
func Normalize(candidates []types.CandidateScore) map[int]float64 {
	out := make(map[int]float64, len(candidates))
	if len(candidates) == 0 {
		return out
	}

	min, max := candidates[0].Score, candidates[0].Score
	for _, c := range candidates[1:] {
		if c.Score < min {
			min = c.Score
		}
		if c.Score > max {
			max = c.Score
		}
	}

	if max == min {
		for _, c := range candidates {
			out[c.ID] = 1.0
		}
		return out
	}

	spread := max - min
	for _, c := range candidates {
		out[c.ID] = (c.Score - min) / spread
	}
	return out
}

// Signal is one normalized score set with its fusion weight.
type Signal struct {
	Weight float64
	Scores map[int]float64
}

// Fuse combines normalized signals into one ranking over the candidate
// ids via weighted sum, sorted descending with the ascending-id
// tie-break. Every signal covers exactly the candidate pool, so a missing
// id contributes zero.
func Fuse(ids []int, signals ...Signal) []types.CandidateScore {
	fused := make([]types.CandidateScore, len(ids))
	for i, id := range ids {
		var score float64
		for _, sig := range signals {
			score += sig.Weight * sig.Scores[id]
		}
		fused[i] = types.CandidateScore{ID: id, Score: score}
	}
	SortRanked(fused)
	return fused
}

// Truncate bounds a ranked list to k entries. k larger than the list is
// clamped, never an error.
func Truncate(ranked []types.CandidateScore, k int) []types.CandidateScore {
	if k > 0 && len(ranked) > k {
		return ranked[:k]
	}
	return ranked
}
