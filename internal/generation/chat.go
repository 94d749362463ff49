package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// ErrEmptyCompletion is returned when the chat endpoint answers without choices.
var ErrEmptyCompletion = errors.New("chat model returned no choices")

// ChatModel sends one system and one user message and returns the reply text.
type ChatModel interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// ChatConfig configures an OpenAI-compatible chat endpoint.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LangChainModel is a ChatModel backed by langchaingo's OpenAI client.
// Completions run at temperature 0.
type LangChainModel struct {
	llm llms.Model
}

// NewLangChainModel creates the chat model. No request is sent until Complete.
func NewLangChainModel(cfg ChatConfig) (*LangChainModel, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}
	return &LangChainModel{llm: llm}, nil
}

// Complete returns the content of the first choice.
func (m *LangChainModel) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}
	opts := []llms.CallOption{llms.WithTemperature(0)}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	resp, err := m.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}
