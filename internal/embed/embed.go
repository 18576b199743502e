// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed turns query text into fixed-length vectors for the dense
// re-ranking path. The provider is a possibly-slow external call; every
// implementation takes a context so an abandoned query stops at this
// boundary instead of burning CPU.
package embed

import "context"

// Embedder produces the query vector for the dense-similarity path.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed returns the embedding for one text. The vector length must
	// equal Dims.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dims reports the fixed vector length this embedder produces, or 0
	// when the length is only known after the first call.
	Dims() int
}
