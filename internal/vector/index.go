// Package vector provides the vector stores that hold chunk embeddings.
package vector

import (
	"context"

	"github.com/hyperjump/sanad/internal/models"
)

// Store holds points in one collection and answers nearest-neighbour queries
// by cosine similarity.
type Store interface {
	// EnsureCollection creates the collection with the given vector size if it
	// does not exist yet. It is a no-op when the collection exists.
	EnsureCollection(ctx context.Context, dimensions int) error
	// Upsert writes points, replacing any existing point with the same ID.
	Upsert(ctx context.Context, points []models.Point) error
	// Search returns up to k points ordered best first.
	Search(ctx context.Context, vector []float32, k int) ([]models.ScoredPoint, error)
	// Count returns the number of points in the collection.
	Count(ctx context.Context) (int, error)
	Close() error
}
