// Package indexer builds the vector index from the text corpus. Building is
// an offline job; the API server only ever reads the finished file.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/chunk"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/docstore"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/vectorindex"
)

// embedBatchSize caps how many chunks go to the embedding provider per call.
const embedBatchSize = 32

// Embedder generates embedding vectors for a batch of texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline builds a vector index from a document corpus.
type Pipeline struct {
	docs           *docstore.Store
	embedder       Embedder
	indexPath      string
	chunkSize      int
	embeddingModel string
}

// NewPipeline creates an index build pipeline.
func NewPipeline(docs *docstore.Store, embedder Embedder, indexPath string, chunkSize int, embeddingModel string) *Pipeline {
	return &Pipeline{
		docs:           docs,
		embedder:       embedder,
		indexPath:      indexPath,
		chunkSize:      chunkSize,
		embeddingModel: embeddingModel,
	}
}

// Build reads every corpus document, splits it into chunks, embeds the
// chunks, and writes a fresh index file. A rebuild replaces the whole index;
// positions are only meaningful within one build.
func (p *Pipeline) Build(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	names, err := p.docs.List()
	if err != nil {
		return fmt.Errorf("failed to list corpus: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("corpus directory %s has no .txt documents", p.docs.Dir())
	}

	var texts []string
	var refs []vectorindex.ChunkRef
	for _, name := range names {
		text, err := p.docs.ReadDocument(name)
		if err != nil {
			return err
		}
		chunks := chunk.Split(text, p.chunkSize)
		if len(chunks) == 0 {
			logger.WarnContext(ctx, "skipping empty document", "document", name)
			continue
		}
		for ord, c := range chunks {
			texts = append(texts, c)
			refs = append(refs, vectorindex.ChunkRef{Document: name, Ordinal: ord})
		}
		logger.InfoContext(ctx, "chunked document", "document", name, "chunks", len(chunks))
	}
	if len(texts) == 0 {
		return fmt.Errorf("corpus produced no chunks")
	}

	vectors := make([][]float32, 0, len(texts))
	for batchStart := 0; batchStart < len(texts); batchStart += embedBatchSize {
		end := batchStart + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := p.embedder.EmbedTexts(ctx, texts[batchStart:end])
		if err != nil {
			return fmt.Errorf("failed to embed batch starting at %d: %w", batchStart, err)
		}
		for _, vec := range batch {
			vectors = append(vectors, vectorindex.NormalizeL2(vec))
		}
		logger.InfoContext(ctx, "embedded batch", "done", len(vectors), "total", len(texts))
	}

	entries := make([]vectorindex.Entry, len(vectors))
	for i := range vectors {
		entries[i] = vectorindex.Entry{Vector: vectors[i], Ref: refs[i]}
	}

	manifest := vectorindex.Manifest{
		Dimension:      len(vectors[0]),
		ChunkSize:      p.chunkSize,
		EmbeddingModel: p.embeddingModel,
		BuiltAt:        time.Now().UTC(),
	}
	if err := vectorindex.Build(p.indexPath, manifest, entries); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	logger.InfoContext(ctx, "index built",
		"path", p.indexPath,
		"documents", len(names),
		"chunks", len(entries),
		"dimension", manifest.Dimension,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
