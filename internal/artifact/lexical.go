// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// posting records one document occurrence of a term: [doc id, term
// frequency]. Encoded as a two-element JSON array to keep the index file
// compact.
type posting [2]int

// termEntry holds the precomputed statistics for one vocabulary term.
type termEntry struct {
	IDF      float64   `json:"idf"`
	Postings []posting `json:"postings"`
}

// LexicalIndex is a prebuilt Okapi BM25 index over the corpus. It is
// constructed offline; this process only loads and scores against it.
type LexicalIndex struct {
	K1         float64              `json:"k1"`
	B          float64              `json:"b"`
	AvgDocLen  float64              `json:"avgdl"`
	DocLengths []int                `json:"doc_lengths"`
	Terms      map[string]termEntry `json:"terms"`
}

// loadLexicalIndex reads and validates the index file.
func loadLexicalIndex(path string) (*LexicalIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexical index: %w", err)
	}

	var idx LexicalIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing lexical index: %w", err)
	}

	if len(idx.DocLengths) == 0 {
		return nil, fmt.Errorf("lexical index has no documents")
	}
	if idx.AvgDocLen <= 0 {
		return nil, fmt.Errorf("lexical index avgdl %g is not positive", idx.AvgDocLen)
	}
	for term, entry := range idx.Terms {
		for _, p := range entry.Postings {
			if p[0] < 0 || p[0] >= len(idx.DocLengths) {
				return nil, fmt.Errorf("lexical index term %q references doc %d outside corpus of %d",
					term, p[0], len(idx.DocLengths))
			}
		}
	}
	return &idx, nil
}

// DocCount returns the number of indexed documents.
func (idx *LexicalIndex) DocCount() int { return len(idx.DocLengths) }

// Score computes the BM25 score of every document against the query
// terms, returning one score per document. Documents sharing no term with
// the query score zero. The index is read-only; Score is safe for
// concurrent use.
func (idx *LexicalIndex) Score(terms []string) []float64 {
	scores := make([]float64, len(idx.DocLengths))
	for _, term := range terms {
		entry, ok := idx.Terms[term]
		if !ok {
			continue
		}
		for _, p := range entry.Postings {
			doc, tf := p[0], float64(p[1])
			dl := float64(idx.DocLengths[doc])
			denom := tf + idx.K1*(1.0-idx.B+idx.B*dl/idx.AvgDocLen)
			scores[doc] += entry.IDF * tf * (idx.K1 + 1.0) / denom
		}
	}
	return scores
}

// Tokenize lowercases and splits a normalized query into scoring terms.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// loadLexical materializes the lexical index on first use.
func (s *Store) loadLexical() (*LexicalIndex, error) {
	s.mu.RLock()
	idx := s.lexical
	s.mu.RUnlock()
	if idx != nil {
		return idx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lexical != nil {
		return s.lexical, nil
	}

	idx, err := loadLexicalIndex(s.path(LexicalFile))
	if err != nil {
		return nil, unavailable(NameLexical, err)
	}
	s.lexical = idx
	return idx, nil
}

// LexicalScores scores the full corpus against a normalized query.
func (s *Store) LexicalScores(query string) ([]float64, error) {
	idx, err := s.loadLexical()
	if err != nil {
		return nil, err
	}
	return idx.Score(Tokenize(query)), nil
}
