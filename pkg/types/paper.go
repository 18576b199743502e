// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Paper holds the metadata for one corpus entry. Papers are owned by the
// artifact store and immutable for the process lifetime; the engine only
// reads them by id.
type Paper struct {
	// ID is the paper's row id in the corpus (dense, zero-based).
	ID int `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Link is a URL for the paper. When the corpus carries no link, the
	// store synthesizes an arXiv title-search URL.
	Link string `json:"link" yaml:"link"`
}
