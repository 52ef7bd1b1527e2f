package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	chromem "github.com/philippgille/chromem-go"
)

// NewEmbeddingFunc adapts a genkit ai.Embedder to the chromem-go
// EmbeddingFunc signature, so the same Ollama embedder serves both index
// build and query time. chromem normalizes vectors itself, so the raw
// embedding is returned as-is.
func NewEmbeddingFunc(embedder ai.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
			Input: []*ai.Document{ai.DocumentFromText(text, nil)},
		})
		if err != nil {
			return nil, fmt.Errorf("embedding text: %w", err)
		}
		if len(resp.Embeddings) == 0 {
			return nil, errors.New("embedder returned no vectors")
		}
		return resp.Embeddings[0].Embedding, nil
	}
}
