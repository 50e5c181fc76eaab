package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/config"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/docstore"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/http"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/language"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/llm"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/rag"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/service"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/session"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/vectorindex"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Load the pre-built vector index (fail-fast: the service is useless
	// without it; run cmd/indexer first).
	index, err := vectorindex.Open(cfg.IndexFile)
	if err != nil {
		log.Fatalf("Failed to load vector index from %s (run the indexer first): %v", cfg.IndexFile, err)
	}
	manifest := index.Manifest()
	slog.Info("Vector index loaded",
		"path", cfg.IndexFile,
		"vectors", index.Len(),
		"dimension", manifest.Dimension,
		"chunk_size", manifest.ChunkSize,
		"embedding_model", manifest.EmbeddingModel,
		"built_at", manifest.BuiltAt,
	)
	if manifest.EmbeddingModel != cfg.EmbeddingModel {
		log.Fatalf("Index was built with embedding model %q but EMBEDDING_MODEL is %q; rebuild the index",
			manifest.EmbeddingModel, cfg.EmbeddingModel)
	}

	// Validate embedding client vector size against the manifest (fail-fast)
	ctx := context.Background()
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModel, manifest.Dimension)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != manifest.Dimension {
		log.Fatalf("Embedding vector size mismatch: index expects %d, got %d", manifest.Dimension, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", manifest.Dimension)

	detector, err := language.NewDetector(cfg.SupportedLanguages)
	if err != nil {
		log.Fatalf("Failed to build language detector: %v", err)
	}
	slog.Info("Language detector ready", "languages", cfg.SupportedLanguages)

	translator := language.NewMyMemoryTranslator(cfg.TranslationAPIURL, cfg.TranslationTimeout)
	reranker := llm.NewRerankClient(cfg.RerankBaseURL, cfg.CrossEncoderModel)
	chatClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	docs := docstore.New(cfg.TextFolder)
	retriever := rag.NewRetriever(embedder, index, docs)
	engine := rag.NewEngine(
		detector,
		translator,
		retriever,
		reranker,
		chatClient,
		cfg.RetrievalK,
		cfg.FinalContextK,
		cfg.GenerationTimeout,
	)

	sessions := session.NewStore(cfg.MaxHistoryTurns)
	chatService := service.NewChatService(engine, sessions, cfg.MaxQueryLength)

	router := http.NewRouter(&http.Deps{
		ChatService: chatService,
		IndexInfo:   index,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
