package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/sanad/internal/models"
)

// MemoryStore is an in-memory vector store using brute-force cosine search.
// Suitable for tests and small corpora; contents are lost on exit.
type MemoryStore struct {
	dimensions int
	order      []string
	points     map[string]models.Point
	mu         sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store. The vector size is fixed by
// the first EnsureCollection call.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string]models.Point)}
}

// EnsureCollection fixes the vector size. Calling it again with the same size is a no-op.
func (m *MemoryStore) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dimensions != 0 && m.dimensions != dimensions {
		return fmt.Errorf("collection exists with dimension %d, requested %d", m.dimensions, dimensions)
	}
	m.dimensions = dimensions
	return nil
}

// Upsert stores points, replacing points with the same ID in place.
func (m *MemoryStore) Upsert(ctx context.Context, points []models.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dimensions == 0 {
		return fmt.Errorf("collection not created")
	}
	for _, p := range points {
		if len(p.Vector) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(p.Vector), m.dimensions)
		}
	}
	for _, p := range points {
		vec := make([]float32, len(p.Vector))
		copy(vec, p.Vector)
		if _, ok := m.points[p.ID]; !ok {
			m.order = append(m.order, p.ID)
		}
		m.points[p.ID] = models.Point{ID: p.ID, Vector: vec, Payload: p.Payload}
	}
	return nil
}

// Search returns the top-k points by cosine similarity. Ties keep insertion order.
func (m *MemoryStore) Search(ctx context.Context, query []float32, k int) ([]models.ScoredPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dimensions != 0 && len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	if k <= 0 || len(m.order) == 0 {
		return nil, nil
	}
	results := make([]models.ScoredPoint, 0, len(m.order))
	for _, id := range m.order {
		p := m.points[id]
		results = append(results, models.ScoredPoint{
			ID:      id,
			Score:   CosineSimilarity(query, p.Vector),
			Payload: p.Payload,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Count returns the number of stored points.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points), nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
