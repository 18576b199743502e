// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank implements the two-stage scoring core: Stage-1 lexical
// candidate generation over the full corpus, Stage-2 re-ranking restricted
// to the candidate pool, and score normalization and fusion. Every
// function is a pure transformation of immutable inputs and safe to run
// concurrently across queries.
//
// See docs/ARCHITECTURE § Ranking.
package rank

import (
	"sort"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

// TopCandidates selects the candidate pool from a full-corpus score slice:
// the top n papers by score, descending, ties broken by ascending id.
// Papers scoring zero share no term with the query and are excluded, so
// the pool can be smaller than n. The slice index is the paper id.
func TopCandidates(scores []float64, n int) []types.CandidateScore {
	candidates := make([]types.CandidateScore, 0, len(scores))
	for id, score := range scores {
		if score > 0 {
			candidates = append(candidates, types.CandidateScore{ID: id, Score: score})
		}
	}

	SortRanked(candidates)

	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// SortRanked orders candidates by descending score; equal scores order by
// ascending id so repeated queries produce identical rankings.
func SortRanked(candidates []types.CandidateScore) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID < candidates[j].ID
	})
}

// IDs extracts the candidate ids in pool order.
func IDs(candidates []types.CandidateScore) []int {
	ids := make([]int, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return ids
}
