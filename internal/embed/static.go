// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// StaticEmbedder derives a deterministic unit vector from token hashes.
// It exists for tests and offline smoke runs; the vectors carry no real
// semantics but identical texts always embed identically, which is all
// the pipeline's determinism contract needs.
type StaticEmbedder struct {
	dims int
}

// NewStaticEmbedder returns a hash-based embedder producing vectors of
// the given length.
func NewStaticEmbedder(dims int) *StaticEmbedder {
	return &StaticEmbedder{dims: dims}
}

// Embed hashes each whitespace token into a bucket and normalizes the
// resulting count vector.
func (e *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dims] += 1
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// Dims reports the vector length.
func (e *StaticEmbedder) Dims() int { return e.dims }
