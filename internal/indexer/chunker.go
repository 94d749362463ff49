// Package indexer splits corpus documents into token windows and uploads
// their embeddings to the vector store.
package indexer

import (
	"github.com/hyperjump/sanad/internal/models"
)

// Chunker splits documents into overlapping fixed-size token windows.
type Chunker struct {
	tokenizer    Tokenizer
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap, in tokens.
func NewChunker(tokenizer Tokenizer, chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		tokenizer:    tokenizer,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Step returns how far consecutive windows advance. It is at least 1.
func (c *Chunker) Step() int {
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	return step
}

// Chunk splits doc into windows of chunkSize tokens advancing by Step tokens.
// The last window may be short. A document of at most chunkSize tokens yields
// exactly one chunk; an empty document yields none. Every chunk carries the
// document's metadata.
func (c *Chunker) Chunk(doc models.Document) []models.Chunk {
	tokens := c.tokenizer.Encode(doc.Text)
	if len(tokens) == 0 {
		return nil
	}
	size := c.chunkSize
	if size <= 0 {
		size = len(tokens)
	}
	step := c.Step()
	chunks := make([]models.Chunk, 0, len(tokens)/step+1)
	for start := 0; start < len(tokens); start += step {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, models.Chunk{
			Text:       c.tokenizer.Decode(tokens[start:end]),
			Metadata:   doc.Metadata,
			ChunkIndex: len(chunks),
		})
		// The window that reaches the end is the last one.
		if end >= len(tokens) {
			break
		}
	}
	return chunks
}

// ChunkAll chunks every document and returns the flat list in document order.
func (c *Chunker) ChunkAll(docs []models.Document) []models.Chunk {
	var all []models.Chunk
	for _, doc := range docs {
		all = append(all, c.Chunk(doc)...)
	}
	return all
}
