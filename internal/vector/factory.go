package vector

import (
	"fmt"
	"time"

	"github.com/hyperjump/sanad/internal/config"
)

// StoreType selects the vector store backend.
type StoreType string

const (
	// StoreTypeQdrant talks to a Qdrant server over REST.
	StoreTypeQdrant StoreType = "qdrant"
	// StoreTypeChromem uses the embedded chromem-go database, optionally persisted to disk.
	StoreTypeChromem StoreType = "chromem"
	// StoreTypeMemory keeps points in process memory only.
	StoreTypeMemory StoreType = "memory"
)

// NewStore creates the vector store described by cfg.
func NewStore(cfg *config.VectorStoreConfig) (Store, error) {
	switch StoreType(cfg.Type) {
	case StoreTypeQdrant, "":
		return NewQdrantStore(QdrantConfig{
			URL:        cfg.Qdrant.Endpoint(),
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case StoreTypeChromem:
		return NewChromemStore(cfg.Chromem.Path, cfg.Collection, cfg.Chromem.Compress)
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown vector store type: %s (supported: qdrant, chromem, memory)", cfg.Type)
	}
}
