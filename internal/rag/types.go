package rag

import (
	"context"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/llm"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/vectorindex"
)

// Candidate is a retrieval result before re-ranking: the resolved chunk
// text plus the vector similarity that surfaced it.
type Candidate struct {
	Document string
	Ordinal  int
	Text     string
	Score    float32
}

// RerankedChunk is a chunk scored by the cross-encoder. Higher is more
// relevant; the scale is model-defined and only the ordering matters.
type RerankedChunk struct {
	Text  string
	Score float64
}

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher is the read-only view of the vector index the retriever needs.
type Searcher interface {
	Search(query []float32, k int) ([]vectorindex.Hit, error)
	Metadata(pos int) (vectorindex.ChunkRef, bool)
	ChunkSize() int
}

// DocumentStore loads source document text by name.
type DocumentStore interface {
	ReadDocument(name string) (string, error)
}

// Reranker scores documents against a query with a cross-encoder model.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]llm.RerankResult, error)
}

// ChatClient invokes the generative model.
type ChatClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}
