// Package search retrieves the corpus passages nearest to a question.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/sanad/internal/embedding"
	"github.com/hyperjump/sanad/internal/models"
	"github.com/hyperjump/sanad/internal/vector"
	"github.com/hyperjump/sanad/pkg/utils"
	"go.uber.org/zap"
)

// DefaultTopK is the number of passages returned when the caller passes topK <= 0.
const DefaultTopK = 5

const unknown = string(models.SourceUnknown)

// Retriever embeds a question and runs a nearest-neighbour search over the corpus.
type Retriever struct {
	embedder embedding.Embedder
	store    vector.Store
	topK     int
	logger   *zap.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets the default number of results.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = utils.OrNop(l) }
}

// NewRetriever creates a retriever. embedder must be the one used at ingestion.
func NewRetriever(embedder embedding.Embedder, store vector.Store, opts ...RetrieverOption) *Retriever {
	r := &Retriever{embedder: embedder, store: store, topK: DefaultTopK, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to topK passages ordered by descending similarity, with
// scores rounded to 4 decimals. topK <= 0 uses the retriever's default.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		topK = r.topK
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := r.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	chunks := make([]models.RetrievedChunk, len(hits))
	for i, h := range hits {
		chunks[i] = toRetrieved(h)
	}
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Score > chunks[j].Score })
	r.logger.Debug("retrieved passages", zap.String("query", query), zap.Int("count", len(chunks)))
	return chunks, nil
}

func toRetrieved(h models.ScoredPoint) models.RetrievedChunk {
	p := h.Payload
	c := models.RetrievedChunk{
		Text:       p.Text,
		Score:      utils.RoundScore(h.Score),
		SourceType: p.SourceType,
		Filename:   p.Filename,
		ChunkIndex: p.ChunkIndex,
		Surah:      p.Surah,
		Ayah:       p.Ayah,
	}
	if c.SourceType == "" {
		c.SourceType = models.SourceUnknown
	}
	if c.Filename == "" {
		c.Filename = unknown
	}
	return c
}
