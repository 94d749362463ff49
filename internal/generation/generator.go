// Package generation produces cited answers from retrieved passages.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/sanad/internal/guard"
	"github.com/hyperjump/sanad/internal/models"
	"github.com/hyperjump/sanad/pkg/utils"
	"go.uber.org/zap"
)

// Fixed replies returned without calling the model.
const (
	DeclineMessage      = "I can only assist with Islamic finance topics. Please ask a question related to Islamic finance, banking, transactions, or related Sharia rulings."
	InsufficientMessage = "I could not find relevant information in my sources to answer this question."
)

// DefaultMaxTokens caps the length of a generated answer.
const DefaultMaxTokens = 1024

// Generator answers questions from context passages only.
type Generator struct {
	model     ChatModel
	onTopic   guard.Classifier
	maxTokens int
	logger    *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithTopicGuard replaces the topic classifier.
func WithTopicGuard(c guard.Classifier) GeneratorOption {
	return func(g *Generator) { g.onTopic = c }
}

// WithMaxTokens sets the completion limit.
func WithMaxTokens(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = utils.OrNop(l) }
}

// NewGenerator creates a generator around model.
func NewGenerator(model ChatModel, opts ...GeneratorOption) *Generator {
	g := &Generator{
		model:     model,
		onTopic:   guard.IsIslamicFinance,
		maxTokens: DefaultMaxTokens,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateAnswer returns DeclineMessage for off-topic questions and
// InsufficientMessage when there are no passages, in both cases without a model
// call. Otherwise it asks the model to answer from the numbered passages.
func (g *Generator) GenerateAnswer(ctx context.Context, question string, chunks []models.RetrievedChunk) (string, error) {
	if !g.onTopic(question) {
		g.logger.Debug("question declined by topic guard")
		return DeclineMessage, nil
	}
	if len(chunks) == 0 {
		return InsufficientMessage, nil
	}
	user := BuildUserMessage(BuildContext(chunks), question)
	answer, err := g.model.Complete(ctx, SystemPrompt, user, g.maxTokens)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
