// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"encoding/json"
	"fmt"
	"os"
)

// authorityFile is the JSON layout of the precomputed citation-authority
// vector. Scores come from an offline PageRank over the citation graph;
// this process never recomputes them.
type authorityFile struct {
	// Damping is informational: the damping factor the offline run used.
	Damping float64 `json:"damping,omitempty"`

	// Scores holds one authority value per paper id.
	Scores []float64 `json:"scores"`
}

func loadAuthorityScores(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading authority scores: %w", err)
	}

	var af authorityFile
	if err := json.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("parsing authority scores: %w", err)
	}
	if len(af.Scores) == 0 {
		return nil, fmt.Errorf("authority file has no scores")
	}
	return af.Scores, nil
}

// loadAuthority materializes the authority vector on first use.
func (s *Store) loadAuthority() ([]float64, error) {
	s.mu.RLock()
	scores := s.authority
	s.mu.RUnlock()
	if scores != nil {
		return scores, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authority != nil {
		return s.authority, nil
	}

	scores, err := loadAuthorityScores(s.path(AuthorityFile))
	if err != nil {
		return nil, unavailable(NameAuthority, err)
	}
	s.authority = scores
	return scores, nil
}

// AuthorityScore returns the precomputed citation-authority score for one
// paper id. Ids beyond the vector score zero: a paper can legitimately be
// absent from the citation graph.
func (s *Store) AuthorityScore(id int) (float64, error) {
	scores, err := s.loadAuthority()
	if err != nil {
		return 0, err
	}
	if id < 0 || id >= len(scores) {
		return 0, nil
	}
	return scores[id], nil
}
