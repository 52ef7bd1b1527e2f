// Package knowledge provides the product knowledge index: document
// chunking, embedding, and semantic similarity search.
//
// The index is built once at startup from the product information document
// and is read-only afterwards, so it is safely shared across concurrent
// readers without locking.
package knowledge

// Chunk is a bounded span of the product document, the unit of retrieval.
type Chunk struct {
	ID      string // stable identifier ("chunk-007")
	Text    string
	Section string // first line of the owning section, for source markers
	Ordinal int    // position within the source document
}

// Result is a single search hit with its cosine similarity score.
type Result struct {
	Chunk
	Similarity float32 // 0..1, higher is more similar
}
