package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/philippgille/chromem-go"
)

const embeddingDims = 64

// HashEmbedding returns a deterministic embedding function for tests.
// Each token is hashed into one of 64 buckets and the resulting
// bag-of-words vector is L2-normalized, so texts sharing words score
// higher on cosine similarity. No network, no model weights.
func HashEmbedding() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, embeddingDims)
		for _, tok := range strings.Fields(strings.ToLower(text)) {
			tok = strings.Trim(tok, ".,!?;:\"'()")
			if tok == "" {
				continue
			}
			h := fnv.New32a()
			h.Write([]byte(tok))
			vec[h.Sum32()%embeddingDims]++
		}

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			// chromem rejects zero vectors; nudge one component.
			vec[0] = 1
			return vec, nil
		}
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
		return vec, nil
	}
}
