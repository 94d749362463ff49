package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/hyperjump/sanad/internal/corpus"
	"github.com/hyperjump/sanad/internal/embedding"
	"github.com/hyperjump/sanad/internal/generation"
	"github.com/hyperjump/sanad/internal/indexer"
	"github.com/hyperjump/sanad/internal/models"
	"github.com/hyperjump/sanad/internal/search"
	"github.com/hyperjump/sanad/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labelLine = regexp.MustCompile(`(?m)^\[\d+\] (.+)$`)

// citingModel cites every passage label it receives and remembers the last user turn.
type citingModel struct {
	mu    sync.Mutex
	calls int
	user  string
}

func (m *citingModel) Complete(_ context.Context, _, user string, _ int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.user = user
	var parts []string
	for _, match := range labelLine.FindAllStringSubmatch(user, -1) {
		parts = append(parts, "[Source: "+match[1]+"]")
	}
	return "According to the passages " + strings.Join(parts, " "), nil
}

type fakeWeb struct {
	calls   int
	results []models.RetrievedChunk
}

func (f *fakeWeb) SearchScholarWeb(context.Context, string, int) []models.RetrievedChunk {
	f.calls++
	return f.results
}

type env struct {
	p     *Pipeline
	store *vector.MemoryStore
	model *citingModel
	web   *fakeWeb
	dir   string
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "quran/quran.txt",
		"2|275|Those who consume interest cannot stand. Allah has permitted trade and has forbidden interest.\n"+
			"2|278|O you who have believed, fear Allah and give up the remainder of interest.\n")
	writeFile(t, dir, "aaoifi/aaoifi_standard_08_murabaha.txt",
		"Murabaha is a sale at cost plus profit. In murabaha the seller discloses the cost. Murabaha requires ownership.")
	writeFile(t, dir, "hadith/bukhari_sales.txt", "The buyer and the seller have the option of cancelling the sale as long as they have not parted.")

	// 4096 buckets keep the fixture vocabulary free of hash collisions.
	emb := embedding.NewMockEmbedder(4096)
	store := vector.NewMemoryStore()
	model := &citingModel{}
	web := &fakeWeb{results: []models.RetrievedChunk{{
		Text: "Conventional mortgages involve riba.", Score: 1.0,
		SourceType: models.SourceScholarWeb, Filename: "https://islamqa.info/en/answers/1",
	}}}
	p := New(Components{
		Loader:    corpus.NewLoader(nil),
		Chunker:   indexer.NewChunker(indexer.NewWordTokenizer(), 800, 100),
		Uploader:  indexer.NewIndexer(emb, store, 2),
		Retriever: search.NewRetriever(emb, store),
		Web:       web,
		Generator: generation.NewGenerator(model),
	}, WithTopK(3))
	return &env{p: p, store: store, model: model, web: web, dir: dir}
}

func TestPipeline_IngestAndAsk(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	stats, err := e.p.Ingest(ctx, e.dir)
	require.NoError(t, err)
	assert.Equal(t, models.IngestStats{Documents: 4, Chunks: 4}, stats)
	n, _ := e.store.Count(ctx)
	assert.Equal(t, 4, n)

	answer, err := e.p.Ask(ctx, "What is Murabaha and how does it work?")
	require.NoError(t, err)
	assert.Contains(t, answer, "[Source: AAOIFI — aaoifi_standard_08_murabaha.txt]")
	assert.Equal(t, 0, e.web.calls, "non-scholar question must not trigger web search")
	assert.True(t, strings.HasPrefix(e.model.user, "CONTEXT PASSAGES:\n[1] AAOIFI — aaoifi_standard_08_murabaha.txt\n"),
		"best match should be first: %q", e.model.user)
}

func TestPipeline_AskScholarQuestionAppendsWeb(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.p.Ingest(ctx, e.dir)
	require.NoError(t, err)

	answer, err := e.p.Ask(ctx, "Is it permissible to take a mortgage with interest?")
	require.NoError(t, err)
	assert.Equal(t, 1, e.web.calls)
	assert.Contains(t, answer, "[Source: SCHOLAR_WEB — https://islamqa.info/en/answers/1]")
	// three corpus passages, then the web passage
	assert.Contains(t, e.model.user, "[4] SCHOLAR_WEB — https://islamqa.info/en/answers/1\n")
}

func TestPipeline_AskOffTopic(t *testing.T) {
	e := newEnv(t)
	answer, err := e.p.Ask(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, generation.DeclineMessage, answer)
	assert.Zero(t, e.model.calls)
	assert.Zero(t, e.web.calls)
}

func TestPipeline_AskEmptyIndex(t *testing.T) {
	e := newEnv(t)
	answer, err := e.p.Ask(context.Background(), "What is riba?")
	require.NoError(t, err)
	assert.Equal(t, generation.InsufficientMessage, answer)
}

func TestPipeline_IngestEmptyCorpus(t *testing.T) {
	e := newEnv(t)
	empty := t.TempDir()
	stats, err := e.p.Ingest(context.Background(), empty)
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)
	n, _ := e.store.Count(context.Background())
	assert.Zero(t, n)
}

func TestPipeline_IngestMissingDir(t *testing.T) {
	e := newEnv(t)
	_, err := e.p.Ingest(context.Background(), filepath.Join(e.dir, "nope"))
	assert.Error(t, err)
}

func TestPipeline_ReingestKeepsPoints(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := e.p.Ingest(ctx, e.dir)
		require.NoError(t, err)
	}
	n, _ := e.store.Count(ctx)
	assert.Equal(t, 4, n)
}

func TestPipeline_IngestFile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	path := writeFile(t, e.dir, "scholar/usmani_riba.txt", "Riba includes any excess stipulated in a loan.")

	stats, err := e.p.IngestFile(ctx, e.dir, path)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Chunks)

	_, err = e.p.IngestFile(ctx, e.dir, writeFile(t, e.dir, "misc/x.txt", "x"))
	assert.Error(t, err)
}

func TestPipeline_SameFilenameInNestedFolders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	writeFile(t, e.dir, "archive/hadith/bukhari_sales.txt", "Whoever cheats is not one of us.")

	stats, err := e.p.Ingest(ctx, e.dir)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Chunks)
	n, _ := e.store.Count(ctx)
	assert.Equal(t, 5, n, "files sharing a name must not overwrite each other")

	_, err = e.p.Ingest(ctx, e.dir)
	require.NoError(t, err)
	n, _ = e.store.Count(ctx)
	assert.Equal(t, 5, n)
}

type failingUploader struct{}

func (failingUploader) EmbedAndUpload(context.Context, []models.Chunk) error {
	return errors.New("batch 0-1: upsert: connection refused")
}

func TestPipeline_IngestUploadError(t *testing.T) {
	e := newEnv(t)
	p := New(Components{
		Loader:   corpus.NewLoader(nil),
		Chunker:  indexer.NewChunker(indexer.NewWordTokenizer(), 800, 100),
		Uploader: failingUploader{},
	})
	stats, err := p.Ingest(context.Background(), e.dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 4, stats.Documents)
}
