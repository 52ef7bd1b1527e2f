package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	chromem "github.com/philippgille/chromem-go"
)

// ErrEmptyCorpus indicates the document produced no indexable chunks.
var ErrEmptyCorpus = errors.New("no indexable chunks in corpus")

const collectionName = "products"

// Index is the in-memory semantic index over the product document.
// Read-only after construction; safe for concurrent searches.
type Index struct {
	col    *chromem.Collection
	chunks map[string]Chunk // keyed by chunk ID
	logger *slog.Logger
}

// BuildIndex chunks the document text, embeds every chunk, and returns a
// ready index. Embedding runs once here; queries only embed the query.
func BuildIndex(ctx context.Context, text string, chunkSize int, embed chromem.EmbeddingFunc, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}

	chunks := SplitChunks(Normalize(text), chunkSize)
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	db := chromem.NewDB()
	col, err := db.CreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	byID := make(map[string]Chunk, len(chunks))
	for _, c := range chunks {
		docs = append(docs, chromem.Document{
			ID:      c.ID,
			Content: c.Text,
			Metadata: map[string]string{
				"section": c.Section,
			},
		})
		byID[c.ID] = c
	}

	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(docs), err)
	}

	logger.Info("knowledge index ready", "chunks", len(chunks))
	return &Index{col: col, chunks: byID, logger: logger}, nil
}

// BuildIndexFromFile reads the product document from disk and builds the index.
func BuildIndexFromFile(ctx context.Context, path string, chunkSize int, embed chromem.EmbeddingFunc, logger *slog.Logger) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %q: %w", path, err)
	}
	return BuildIndex(ctx, string(data), chunkSize, embed, logger)
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Search returns the topK most similar chunks to the query, ordered by
// descending similarity. topK is clamped to the collection size.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if n := ix.col.Count(); topK > n {
		topK = n
	}

	hits, err := ix.col.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		chunk, ok := ix.chunks[h.ID]
		if !ok {
			ix.logger.Warn("query returned unknown chunk", "id", h.ID)
			continue
		}
		results = append(results, Result{Chunk: chunk, Similarity: h.Similarity})
	}
	return results, nil
}
