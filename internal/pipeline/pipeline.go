// Package pipeline wires loading, chunking, upload, retrieval, web search and
// generation into the ingest and ask flows.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/sanad/internal/corpus"
	"github.com/hyperjump/sanad/internal/guard"
	"github.com/hyperjump/sanad/internal/indexer"
	"github.com/hyperjump/sanad/internal/models"
	"github.com/hyperjump/sanad/internal/search"
	"github.com/hyperjump/sanad/internal/websearch"
	"github.com/hyperjump/sanad/pkg/utils"
	"go.uber.org/zap"
)

// Retriever finds corpus passages for a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error)
}

// AnswerGenerator turns a question and passages into an answer.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, chunks []models.RetrievedChunk) (string, error)
}

// Uploader embeds and stores chunks.
type Uploader interface {
	EmbedAndUpload(ctx context.Context, chunks []models.Chunk) error
}

// Pipeline holds the injected components. Ask is safe for concurrent use;
// Ingest and IngestFile are serialized so only one writer uploads at a time.
type Pipeline struct {
	loader       *corpus.Loader
	chunker      *indexer.Chunker
	uploader     Uploader
	retriever    Retriever
	web          websearch.Searcher
	generator    AnswerGenerator
	wantsScholar guard.Classifier
	topK         int
	webResults   int
	logger       *zap.Logger

	writeMu sync.Mutex
}

// Components are the collaborators a Pipeline needs. Web may be nil to disable
// web augmentation.
type Components struct {
	Loader    *corpus.Loader
	Chunker   *indexer.Chunker
	Uploader  Uploader
	Retriever Retriever
	Web       websearch.Searcher
	Generator AnswerGenerator
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for stage progress.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = utils.OrNop(l) }
}

// WithTopK sets how many corpus passages Ask retrieves.
func WithTopK(k int) Option {
	return func(p *Pipeline) { p.topK = k }
}

// WithWebResults sets how many web results Ask requests.
func WithWebResults(n int) Option {
	return func(p *Pipeline) { p.webResults = n }
}

// WithScholarClassifier replaces the predicate deciding when to search the web.
func WithScholarClassifier(c guard.Classifier) Option {
	return func(p *Pipeline) { p.wantsScholar = c }
}

// New creates a pipeline from c.
func New(c Components, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader:       c.Loader,
		chunker:      c.Chunker,
		uploader:     c.Uploader,
		retriever:    c.Retriever,
		web:          c.Web,
		generator:    c.Generator,
		wantsScholar: guard.IsScholarQuestion,
		topK:         search.DefaultTopK,
		webResults:   websearch.DefaultMaxResults,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest loads every corpus file under dir, chunks it and uploads the chunks.
// An empty corpus is not an error; it is logged and nothing is uploaded.
func (p *Pipeline) Ingest(ctx context.Context, dir string) (models.IngestStats, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.logger.Info("loading documents", zap.String("dir", dir))
	docs, err := p.loader.Load(dir)
	if err != nil {
		return models.IngestStats{}, fmt.Errorf("load corpus: %w", err)
	}
	if len(docs) == 0 {
		p.logger.Warn("no documents found; add .txt or .pdf files under the quran/, hadith/, scholar/ and aaoifi/ subfolders",
			zap.String("dir", dir))
		return models.IngestStats{}, nil
	}
	return p.upload(ctx, docs)
}

// IngestFile loads and uploads a single corpus file below root.
func (p *Pipeline) IngestFile(ctx context.Context, root, path string) (models.IngestStats, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	docs, err := p.loader.LoadFile(root, path)
	if err != nil {
		return models.IngestStats{}, fmt.Errorf("load %s: %w", path, err)
	}
	if len(docs) == 0 {
		return models.IngestStats{}, nil
	}
	return p.upload(ctx, docs)
}

func (p *Pipeline) upload(ctx context.Context, docs []models.Document) (models.IngestStats, error) {
	stats := models.IngestStats{Documents: len(docs)}
	chunks := p.chunker.ChunkAll(docs)
	stats.Chunks = len(chunks)
	p.logger.Info("chunked documents", zap.Int("documents", stats.Documents), zap.Int("chunks", stats.Chunks))

	if err := p.uploader.EmbedAndUpload(ctx, chunks); err != nil {
		return stats, fmt.Errorf("upload: %w", err)
	}
	p.logger.Info("ingestion complete", zap.Int("documents", stats.Documents), zap.Int("chunks", stats.Chunks))
	return stats, nil
}

// Ask retrieves corpus passages, appends scholar web results when the question
// asks for rulings or opinions, and generates a cited answer. Corpus passages
// always precede web passages.
func (p *Pipeline) Ask(ctx context.Context, question string) (string, error) {
	chunks, err := p.retriever.Retrieve(ctx, question, p.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	if p.web != nil && p.wantsScholar(question) {
		web := p.web.SearchScholarWeb(ctx, question, p.webResults)
		p.logger.Debug("web augmentation", zap.Int("web_chunks", len(web)))
		chunks = append(chunks, web...)
	}
	return p.generator.GenerateAnswer(ctx, question, chunks)
}
