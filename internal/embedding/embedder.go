// Package embedding turns text into vectors for the index and the query path.
package embedding

import "context"

// Embedder produces vector embeddings for text. Ingestion and retrieval must use
// the same Embedder so stored and query vectors share one space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
