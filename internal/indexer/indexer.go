package indexer

import (
	"context"
	"fmt"

	"github.com/hyperjump/sanad/internal/embedding"
	"github.com/hyperjump/sanad/internal/models"
	"github.com/hyperjump/sanad/internal/pointid"
	"github.com/hyperjump/sanad/internal/vector"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of chunks embedded and upserted per request.
const DefaultBatchSize = 100

// Indexer embeds chunks and upserts them into the vector store.
type Indexer struct {
	embedder  embedding.Embedder
	store     vector.Store
	batchSize int
	pointID   pointid.Func
	logger    *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for batch progress.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithPointIDs sets how point IDs are derived. The default is pointid.Stable.
func WithPointIDs(f pointid.Func) IndexerOption {
	return func(idx *Indexer) { idx.pointID = f }
}

// NewIndexer creates an indexer. A batchSize <= 0 uses DefaultBatchSize.
func NewIndexer(embedder embedding.Embedder, store vector.Store, batchSize int, opts ...IndexerOption) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	idx := &Indexer{
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		pointID:   pointid.Stable,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	if idx.logger == nil {
		idx.logger = zap.NewNop()
	}
	return idx
}

// EmbedAndUpload ensures the collection exists, then embeds and upserts chunks in
// sequential batches. The first failing batch aborts the run; batches before it
// stay in the store.
func (idx *Indexer) EmbedAndUpload(ctx context.Context, chunks []models.Chunk) error {
	if err := idx.store.EnsureCollection(ctx, idx.embedder.Dimensions()); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	total := len(chunks)
	for start := 0; start < total; start += idx.batchSize {
		end := start + idx.batchSize
		if end > total {
			end = total
		}
		if err := idx.uploadBatch(ctx, chunks[start:end]); err != nil {
			return fmt.Errorf("batch %d-%d: %w", start, end-1, err)
		}
		idx.logger.Info("uploaded batch", zap.Int("uploaded", end), zap.Int("total", total))
	}
	return nil
}

func (idx *Indexer) uploadBatch(ctx context.Context, batch []models.Chunk) error {
	texts := make([]string, len(batch))
	for i, ch := range batch {
		texts[i] = ch.Text
	}
	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(batch))
	}
	points := make([]models.Point, len(batch))
	for i, ch := range batch {
		points[i] = models.Point{
			ID:      idx.pointID(ch),
			Vector:  vectors[i],
			Payload: ch.Payload(),
		}
	}
	if err := idx.store.Upsert(ctx, points); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}
