package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from a .env file in the working directory, if present.
// Variables already set in the environment are not overridden.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// ApplyEnv overrides cfg with values from the environment. Environment values win over the file.
func ApplyEnv(cfg *Config) {
	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.OpenAI.EmbeddingModel, "EMBEDDING_MODEL")
	setString(&cfg.OpenAI.ChatModel, "CHAT_MODEL")
	setString(&cfg.VectorStore.Type, "VECTOR_STORE")
	setString(&cfg.VectorStore.Collection, "COLLECTION_NAME")
	setString(&cfg.VectorStore.Qdrant.URL, "QDRANT_URL")
	setString(&cfg.VectorStore.Qdrant.Host, "QDRANT_HOST")
	setInt(&cfg.VectorStore.Qdrant.Port, "QDRANT_PORT")
	setString(&cfg.VectorStore.Qdrant.APIKey, "QDRANT_API_KEY")
	setInt(&cfg.Chunking.ChunkSize, "CHUNK_SIZE")
	setInt(&cfg.Chunking.ChunkOverlap, "CHUNK_OVERLAP")
	setInt(&cfg.Retrieval.TopK, "TOP_K")
	setString(&cfg.WebSearch.APIKey, "TAVILY_API_KEY")
	if v := strings.TrimSpace(os.Getenv("TAVILY_DOMAINS")); v != "" {
		var domains []string
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				domains = append(domains, d)
			}
		}
		cfg.WebSearch.Domains = domains
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// setInt ignores values that do not parse; Validate reports the resulting config.
func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
