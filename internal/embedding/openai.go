package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIConfig configures an OpenAI-compatible embedding endpoint.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	BatchSize  int
	Timeout    time.Duration
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint through langchaingo.
type OpenAIEmbedder struct {
	embedder   *embeddings.EmbedderImpl
	dimensions int
}

// NewOpenAIEmbedder creates the embedder. No request is sent until the first call.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	var embOpts []embeddings.Option
	if cfg.BatchSize > 0 {
		embOpts = append(embOpts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	e, err := embeddings.NewEmbedder(llm, embOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &OpenAIEmbedder{embedder: e, dimensions: cfg.Dimensions}, nil
}

// Embed returns the embedding for a single query text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err := e.checkDim(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch embeds texts in input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embed documents: got %d vectors for %d texts", len(vecs), len(texts))
	}
	for _, v := range vecs {
		if err := e.checkDim(v); err != nil {
			return nil, err
		}
	}
	return vecs, nil
}

func (e *OpenAIEmbedder) checkDim(v []float32) error {
	if e.dimensions > 0 && len(v) != e.dimensions {
		return fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(v), e.dimensions)
	}
	return nil
}

// Dimensions returns the configured embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
