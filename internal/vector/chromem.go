package vector

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/hyperjump/sanad/internal/models"
	"github.com/philippgille/chromem-go"
)

// Payload keys used in chromem document metadata.
const (
	metaSourceType = "source_type"
	metaFilename   = "filename"
	metaChunkIndex = "chunk_index"
	metaSurah      = "surah"
	metaAyah       = "ayah"
)

var errNoEmbeddingFunc = errors.New("chromem store expects precomputed embeddings")

// ChromemStore is an embedded vector store backed by chromem-go. With a path it
// persists to disk; without one it lives in memory.
type ChromemStore struct {
	db         *chromem.DB
	name       string
	collection *chromem.Collection
	dimensions int
	mu         sync.Mutex
}

// NewChromemStore opens (or creates) a chromem database. An empty path keeps everything in memory.
func NewChromemStore(path, collection string, compress bool) (*ChromemStore, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, compress)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}
	return &ChromemStore{db: db, name: collection}, nil
}

// EnsureCollection gets or creates the collection.
func (s *ChromemStore) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection != nil {
		if s.dimensions == 0 {
			s.dimensions = dimensions
		}
		if s.dimensions != dimensions {
			return fmt.Errorf("collection exists with dimension %d, requested %d", s.dimensions, dimensions)
		}
		return nil
	}
	c, err := s.db.GetOrCreateCollection(s.name, map[string]string{"dimensions": strconv.Itoa(dimensions)}, noEmbedding)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.name, err)
	}
	s.collection = c
	s.dimensions = dimensions
	return nil
}

// Upsert adds documents with precomputed embeddings; an existing ID is overwritten.
func (s *ChromemStore) Upsert(ctx context.Context, points []models.Point) error {
	c, err := s.coll()
	if err != nil {
		return err
	}
	s.mu.Lock()
	dims := s.dimensions
	s.mu.Unlock()
	docs := make([]chromem.Document, len(points))
	for i, p := range points {
		if dims > 0 && len(p.Vector) != dims {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(p.Vector), dims)
		}
		docs[i] = chromem.Document{
			ID:        p.ID,
			Metadata:  payloadToMetadata(p.Payload),
			Embedding: p.Vector,
			Content:   p.Payload.Text,
		}
	}
	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Search queries the collection. k is capped at the collection size.
func (s *ChromemStore) Search(ctx context.Context, vector []float32, k int) ([]models.ScoredPoint, error) {
	c, err := s.coll()
	if err != nil {
		return nil, err
	}
	if n := c.Count(); k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}
	res, err := c.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	out := make([]models.ScoredPoint, len(res))
	for i, r := range res {
		out[i] = models.ScoredPoint{
			ID:      r.ID,
			Score:   float64(r.Similarity),
			Payload: metadataToPayload(r.Content, r.Metadata),
		}
	}
	return out, nil
}

// Count returns the number of documents in the collection.
func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	c, err := s.coll()
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

// Close is a no-op; persistent databases write on every add.
func (s *ChromemStore) Close() error {
	return nil
}

// coll returns the collection, picking up one persisted by an earlier run.
// The dimension of a reopened collection is unknown until EnsureCollection.
func (s *ChromemStore) coll() (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection == nil {
		c := s.db.GetCollection(s.name, noEmbedding)
		if c == nil {
			return nil, fmt.Errorf("collection %s not created", s.name)
		}
		s.collection = c
	}
	return s.collection, nil
}

func noEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

func payloadToMetadata(p models.Payload) map[string]string {
	m := map[string]string{
		metaSourceType: string(p.SourceType),
		metaFilename:   p.Filename,
		metaChunkIndex: strconv.Itoa(p.ChunkIndex),
	}
	if p.Surah != nil {
		m[metaSurah] = *p.Surah
	}
	if p.Ayah != nil {
		m[metaAyah] = *p.Ayah
	}
	return m
}

func metadataToPayload(text string, m map[string]string) models.Payload {
	p := models.Payload{
		Text:       text,
		SourceType: models.SourceType(m[metaSourceType]),
		Filename:   m[metaFilename],
	}
	if idx, err := strconv.Atoi(m[metaChunkIndex]); err == nil {
		p.ChunkIndex = idx
	}
	if v, ok := m[metaSurah]; ok {
		p.Surah = models.StringPtr(v)
	}
	if v, ok := m[metaAyah]; ok {
		p.Ayah = models.StringPtr(v)
	}
	return p
}
