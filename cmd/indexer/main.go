package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/config"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/docstore"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/indexer"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/llm"
)

func main() {
	watch := flag.Bool("watch", false, "keep running and rebuild the index when corpus documents change")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextutil.WithLogger(ctx, logger)

	docs := docstore.New(cfg.TextFolder)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModel, 0)
	pipeline := indexer.NewPipeline(docs, embedder, cfg.IndexFile, cfg.ChunkSize, cfg.EmbeddingModel)

	if err := pipeline.Build(ctx); err != nil {
		log.Fatalf("Index build failed: %v", err)
	}

	if !*watch {
		return
	}

	watcher := indexer.NewWatcher(pipeline, cfg.TextFolder)
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Watcher failed: %v", err)
	}
	slog.Info("Indexer stopped")
}
