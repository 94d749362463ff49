// Package main is the sanad CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/sanad/internal/cli"
	"github.com/hyperjump/sanad/internal/config"
	"github.com/hyperjump/sanad/internal/corpus"
	"github.com/hyperjump/sanad/internal/embedding"
	"github.com/hyperjump/sanad/internal/extract"
	"github.com/hyperjump/sanad/internal/generation"
	"github.com/hyperjump/sanad/internal/indexer"
	"github.com/hyperjump/sanad/internal/pipeline"
	"github.com/hyperjump/sanad/internal/pointid"
	"github.com/hyperjump/sanad/internal/search"
	"github.com/hyperjump/sanad/internal/server"
	"github.com/hyperjump/sanad/internal/vector"
	"github.com/hyperjump/sanad/internal/watcher"
	"github.com/hyperjump/sanad/internal/websearch"
	"github.com/hyperjump/sanad/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigFile = "config.yaml"

// loadConfig loads .env, then the config file. An explicit path must exist; the
// default config.yaml in the current directory is optional and defaults apply
// when it is missing. Returns the config and the path that was loaded, if any.
func loadConfig(path string) (*config.Config, string, error) {
	config.LoadDotEnv()
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return config.Default(), "", nil
		}
		path = defaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return cfg, path, nil
}

// parseCommand splits args (without the program name) into a command and its
// flags. No command means chat; a leading --ingest is the ingest command.
func parseCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "chat", nil
	}
	first := args[0]
	switch {
	case first == "--ingest" || first == "-ingest":
		return "ingest", args[1:]
	case strings.HasPrefix(first, "-") && !isGlobalFlag(first):
		return first, args[1:]
	case strings.HasPrefix(first, "-"):
		return "chat", args
	}
	return first, args[1:]
}

func isGlobalFlag(arg string) bool {
	name := strings.TrimLeft(arg, "-")
	if i := strings.Index(name, "="); i >= 0 {
		name = name[:i]
	}
	return name == "config" || name == "debug"
}

func main() {
	command, args := parseCommand(os.Args[1:])
	switch command {
	case "chat":
		runChat(args)
	case "ingest":
		runIngest(args)
	case "ask":
		runAsk(args)
	case "server":
		runServer(args)
	case "watch":
		runWatch(args)
	case "version", "--version", "-v":
		fmt.Printf("sanad version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// commonFlags registers the flags every command accepts.
func commonFlags(fs *flag.FlagSet) (configPath *string, debug *bool) {
	configPath = fs.String("config", "", "config file path (default: ./config.yaml if present)")
	debug = fs.Bool("debug", false, "enable debug logging")
	return configPath, debug
}

// setup loads and validates config and creates the logger and components.
// Any failure is printed and exits 1 before work starts.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolved),
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.String("collection", cfg.VectorStore.Collection),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath, debug := commonFlags(fs)
	dir := fs.String("dir", "", "corpus directory (default from config, data/raw)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	corpusDir := cfg.Corpus.Dir
	if *dir != "" {
		corpusDir = *dir
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := components.Pipeline.Ingest(ctx, corpusDir)
	if err != nil {
		components.Close()
		logger.Fatal("Ingestion failed", zap.String("dir", corpusDir), zap.Error(err))
	}
	_ = cli.WriteIngestStats(os.Stdout, stats, format)
}

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath, debug := commonFlags(fs)
	_ = fs.Parse(args)

	_, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cli.Chat(ctx, components.Pipeline, os.Stdin, os.Stdout); err != nil {
		logger.Error("chat input failed", zap.Error(err))
	}
}

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath, debug := commonFlags(fs)
	output := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sanad ask [flags] <question>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(reorderArgs(args))

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fs.Usage()
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	_, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	answer, err := components.Pipeline.Ask(context.Background(), question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		components.Close()
		os.Exit(1)
	}
	_ = cli.WriteAnswer(os.Stdout, answer, format)
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath, debug := commonFlags(fs)
	watch := fs.Bool("watch", false, "also watch the corpus directory and ingest changed files")
	_ = fs.Parse(args)

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *watch {
		w := newCorpusWatcher(cfg, components.Pipeline, logger)
		if err := w.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Pipeline, components.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath, debug := commonFlags(fs)
	dir := fs.String("dir", "", "corpus directory (default from config, data/raw)")
	syncExisting := fs.Bool("sync", false, "ingest existing files before watching")
	_ = fs.Parse(args)

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()
	if *dir != "" {
		cfg.Corpus.Dir = *dir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	w := newCorpusWatcher(cfg, components.Pipeline, logger)
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	if *syncExisting {
		w.SyncExisting()
	}
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", cfg.Corpus.Dir)
	<-ctx.Done()
	logger.Info("Shutting down...")
}

// newCorpusWatcher ingests each created or modified corpus file. Deletions are
// only logged; points already uploaded stay in the collection.
func newCorpusWatcher(cfg *config.Config, p *pipeline.Pipeline, logger *zap.Logger) *watcher.Watcher {
	return watcher.New(cfg.Corpus.Dir,
		func(path string) {
			stats, err := p.IngestFile(context.Background(), cfg.Corpus.Dir, path)
			if err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				return
			}
			logger.Info("ingested changed file", zap.String("path", path), zap.Int("chunks", stats.Chunks))
		},
		watcher.WithLogger(logger),
		watcher.WithExtensions(extract.SupportedExtensions),
		watcher.WithRemoveHandler(func(path string) {
			logger.Info("corpus file removed; its points remain until the collection is rebuilt", zap.String("path", path))
		}),
	)
}

// reorderArgs moves flags before positional arguments so that
// "sanad ask what is riba --output json" parses the flag.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if strings.Contains(a, "=") {
			continue
		}
		name := strings.TrimLeft(a, "-")
		if name != "debug" && i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, positional...)
}

// Components holds initialized services.
type Components struct {
	Store    vector.Store
	Embedder embedding.Embedder
	Pipeline *pipeline.Pipeline
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	tokenizer, err := indexer.NewTiktokenTokenizer(cfg.Chunking.Encoding, cfg.OpenAI.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	chunker := indexer.NewChunker(tokenizer, cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)

	timeout := time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second
	embedder, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.EmbeddingDimensions,
		BatchSize:  cfg.Index.BatchSize,
		Timeout:    timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	store, err := vector.NewStore(&cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	logger.Debug("vector store initialized", zap.String("type", cfg.VectorStore.Type))

	ids, err := pointid.ForStrategy(cfg.Index.PointIDs)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	idx := indexer.NewIndexer(embedder, store, cfg.Index.BatchSize,
		indexer.WithLogger(logger),
		indexer.WithPointIDs(ids),
	)
	retriever := search.NewRetriever(
		embedding.NewCachedEmbedder(embedder, cfg.OpenAI.QueryCacheSize),
		store,
		search.WithTopK(cfg.Retrieval.TopK),
		search.WithLogger(logger),
	)

	var web websearch.Searcher
	if cfg.WebSearch.APIKey != "" {
		web = websearch.NewClient(websearch.Config{
			APIKey:  cfg.WebSearch.APIKey,
			BaseURL: cfg.WebSearch.BaseURL,
			Domains: cfg.WebSearch.Domains,
			Timeout: time.Duration(cfg.WebSearch.TimeoutSecs) * time.Second,
		}, websearch.WithLogger(logger))
	} else {
		logger.Debug("web search disabled: TAVILY_API_KEY is not set")
	}

	chat, err := generation.NewLangChainModel(generation.ChatConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
		Timeout: timeout,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	generator := generation.NewGenerator(chat,
		generation.WithMaxTokens(cfg.OpenAI.MaxTokens),
		generation.WithLogger(logger),
	)

	p := pipeline.New(pipeline.Components{
		Loader:    corpus.NewLoader(extract.NewExtractor(), corpus.WithLogger(logger)),
		Chunker:   chunker,
		Uploader:  idx,
		Retriever: retriever,
		Web:       web,
		Generator: generator,
	},
		pipeline.WithLogger(logger),
		pipeline.WithTopK(cfg.Retrieval.TopK),
		pipeline.WithWebResults(cfg.WebSearch.MaxResults),
	)

	return &Components{
		Store:    store,
		Embedder: embedder,
		Pipeline: p,
	}, nil
}

func printUsage() {
	fmt.Println(`sanad - Islamic finance questions answered from cited sources

Usage:
  sanad [chat] [flags]            Start the interactive chat (default)
  sanad ingest [flags]            Load, chunk, embed and upload the corpus
  sanad --ingest [flags]          Same as ingest
  sanad ask [flags] <question>    Answer one question and exit
  sanad server [flags]            Start the HTTP server
  sanad watch [flags]             Ingest corpus files as they change
  sanad version                   Show version
  sanad help                      Show this help

Common Flags:
  --config string    Config file path (default: ./config.yaml if present)
  --debug            Enable debug logging

Ingest Flags:
  --dir string       Corpus directory with quran/, hadith/, scholar/ and aaoifi/ (default: data/raw)
  --output string    Output format: text or json (default: text)

Ask Flags:
  --output string    Output format: text or json (default: text)

Server Flags:
  --watch            Also watch the corpus directory

Watch Flags:
  --dir string       Corpus directory (default: data/raw)
  --sync             Ingest existing files before watching

Environment:
  OPENAI_API_KEY (required), TAVILY_API_KEY, QDRANT_URL, QDRANT_HOST, QDRANT_PORT,
  QDRANT_API_KEY, COLLECTION_NAME, VECTOR_STORE, CHUNK_SIZE, CHUNK_OVERLAP, TOP_K

Examples:
  sanad ingest --dir data/raw
  sanad
  sanad ask "Is it permissible to take a mortgage?"
  sanad ask --output json "What is murabaha?"
  sanad server --watch`)
}
