// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-engine
// retrieval service: papers, search methods, scored results, and the
// per-stage configuration blocks.
//
// See docs/ARCHITECTURE § Retrieval Pipeline, § Data Structures.
package types

import "fmt"

// Method selects the ranking strategy for a search. The set is closed;
// anything else is a validation error raised before any stage runs.
type Method string

const (
	// MethodBM25 ranks by raw lexical score only.
	MethodBM25 Method = "bm25"

	// MethodBERT ranks by dense semantic similarity over the lexical
	// candidate pool.
	MethodBERT Method = "bert"

	// MethodPageRank mixes lexical relevance with precomputed citation
	// authority.
	MethodPageRank Method = "pagerank"

	// MethodHybrid fuses lexical, dense, and authority signals.
	MethodHybrid Method = "hybrid"
)

// ParseMethod validates a method string against the closed set.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodBM25, MethodBERT, MethodPageRank, MethodHybrid:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown method %q (valid: bm25, bert, pagerank, hybrid)", s)
}

// Methods lists the valid methods in presentation order.
func Methods() []Method {
	return []Method{MethodBM25, MethodBERT, MethodPageRank, MethodHybrid}
}

// CandidateScore pairs a paper id with a raw, stage-local score. Candidate
// sets live only for the duration of one query.
type CandidateScore struct {
	ID    int
	Score float64
}

// SearchResult is the externally visible scored record. Score semantics
// depend on Method: raw BM25 for bm25, min-max-normalized values for the
// other methods.
type SearchResult struct {
	ID       int     `json:"id" yaml:"id"`
	Title    string  `json:"title" yaml:"title"`
	Abstract string  `json:"abstract" yaml:"abstract"`
	Link     string  `json:"link" yaml:"link"`
	Score    float64 `json:"score" yaml:"score"`
	Method   string  `json:"method" yaml:"method"`
}

// SearchResponse is the full reply for one query.
type SearchResponse struct {
	// Query is the normalized query the engine actually ranked against.
	Query string `json:"query" yaml:"query"`

	Method Method `json:"method" yaml:"method"`

	// TopK is the requested result bound, after clamping to the
	// candidate pool.
	TopK int `json:"top_k" yaml:"top_k"`

	Results []SearchResult `json:"results" yaml:"results"`
}
