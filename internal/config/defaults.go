package config

// Point ID strategies.
const (
	PointIDsStable = "stable"
	PointIDsRandom = "random"
)

// DefaultDomains is the whitelist of trusted scholar sites used for web search.
var DefaultDomains = []string{
	"isra.my",
	"muftitaqiusmani.com",
	"islamqa.info",
	"daralifta.gov.eg",
	"iifa-oic.org",
}

// ApplyDefaults sets default values for any zero values in cfg.
// A zero chunk_overlap is treated as unset.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.EmbeddingDimensions == 0 {
		cfg.OpenAI.EmbeddingDimensions = 1536
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = 1024
	}
	if cfg.OpenAI.TimeoutSecs == 0 {
		cfg.OpenAI.TimeoutSecs = 60
	}
	if cfg.OpenAI.QueryCacheSize == 0 {
		cfg.OpenAI.QueryCacheSize = 1000
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "qdrant"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "islamic_finance"
	}
	if cfg.VectorStore.Qdrant.Host == "" {
		cfg.VectorStore.Qdrant.Host = "localhost"
	}
	if cfg.VectorStore.Qdrant.Port == 0 {
		cfg.VectorStore.Qdrant.Port = 6333
	}
	if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
		cfg.VectorStore.Qdrant.TimeoutSecs = 30
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 800
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 100
	}
	if cfg.Index.BatchSize == 0 {
		cfg.Index.BatchSize = 100
	}
	if cfg.Index.PointIDs == "" {
		cfg.Index.PointIDs = PointIDsStable
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.WebSearch.BaseURL == "" {
		cfg.WebSearch.BaseURL = "https://api.tavily.com"
	}
	if cfg.WebSearch.Domains == nil {
		cfg.WebSearch.Domains = append([]string(nil), DefaultDomains...)
	}
	if cfg.WebSearch.MaxResults == 0 {
		cfg.WebSearch.MaxResults = 3
	}
	if cfg.WebSearch.TimeoutSecs == 0 {
		cfg.WebSearch.TimeoutSecs = 30
	}
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = "data/raw"
	}
}
