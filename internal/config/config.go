// Package config provides configuration loading and structs for the sanad assistant.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned by Validate when no OpenAI API key is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Index       IndexConfig       `yaml:"index"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	WebSearch   WebSearchConfig   `yaml:"web_search"`
	Corpus      CorpusConfig      `yaml:"corpus"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// OpenAIConfig holds the embedding and chat model settings. Any OpenAI-compatible
// endpoint can be used by changing BaseURL.
type OpenAIConfig struct {
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	EmbeddingModel      string `yaml:"embedding_model"`
	ChatModel           string `yaml:"chat_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
	MaxTokens           int    `yaml:"max_tokens"`
	TimeoutSecs         int    `yaml:"timeout_secs"`
	QueryCacheSize      int    `yaml:"query_cache_size"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Type       string        `yaml:"type"` // qdrant, chromem or memory
	Collection string        `yaml:"collection"`
	Qdrant     QdrantConfig  `yaml:"qdrant"`
	Chromem    ChromemConfig `yaml:"chromem"`
}

// QdrantConfig holds Qdrant connection settings. URL takes priority over Host and Port.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Endpoint returns the Qdrant base URL.
func (q QdrantConfig) Endpoint() string {
	if q.URL != "" {
		return strings.TrimRight(q.URL, "/")
	}
	return fmt.Sprintf("http://%s:%d", q.Host, q.Port)
}

// ChromemConfig holds settings for the embedded chromem-go store.
// An empty Path keeps the collection in memory only.
type ChromemConfig struct {
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

// ChunkingConfig holds token window settings.
type ChunkingConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	Encoding     string `yaml:"encoding"` // tiktoken encoding; derived from the embedding model when empty
}

// IndexConfig holds upload settings.
type IndexConfig struct {
	BatchSize int    `yaml:"batch_size"`
	PointIDs  string `yaml:"point_ids"` // stable or random
}

// RetrievalConfig holds query-time settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// WebSearchConfig holds Tavily settings. Web search is disabled when APIKey is empty.
type WebSearchConfig struct {
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Domains     []string `yaml:"domains"`
	MaxResults  int      `yaml:"max_results"`
	TimeoutSecs int      `yaml:"timeout_secs"`
}

// CorpusConfig holds the corpus location.
type CorpusConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns a config with environment overrides and defaults applied,
// for use when no config file exists.
func Default() *Config {
	var cfg Config
	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, applies environment overrides
// and defaults, and expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.Dir = expandPath(cfg.Corpus.Dir, configDir)
	cfg.VectorStore.Chromem.Path = expandPath(cfg.VectorStore.Chromem.Path, configDir)

	return &cfg, nil
}

// Validate checks settings that must hold before any work starts.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, %d), got %d", c.Chunking.ChunkSize, c.Chunking.ChunkOverlap)
	}
	if c.Index.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.Index.BatchSize)
	}
	switch c.Index.PointIDs {
	case PointIDsStable, PointIDsRandom:
	default:
		return fmt.Errorf("unknown point_ids strategy %q (supported: stable, random)", c.Index.PointIDs)
	}
	switch c.VectorStore.Type {
	case "qdrant", "chromem", "memory":
	default:
		return fmt.Errorf("unknown vector store type %q (supported: qdrant, chromem, memory)", c.VectorStore.Type)
	}
	if c.OpenAI.EmbeddingDimensions <= 0 {
		return fmt.Errorf("embedding_dimensions must be positive, got %d", c.OpenAI.EmbeddingDimensions)
	}
	return nil
}

// expandPath makes paths starting with "./" relative to configDir.
// Absolute paths and other relative paths are returned unchanged.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	return path
}
