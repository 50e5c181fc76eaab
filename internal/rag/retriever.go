package rag

import (
	"context"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/chunk"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/vectorindex"
)

// Retriever resolves a pivot-language query to candidate chunks via the
// vector index. Every dependency failure degrades to an empty candidate
// set so the caller can still answer without context.
type Retriever struct {
	embedder Embedder
	index    Searcher
	docs     DocumentStore
}

// NewRetriever creates a retriever over the given collaborators.
func NewRetriever(embedder Embedder, index Searcher, docs DocumentStore) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		docs:     docs,
	}
}

// Retrieve embeds the pivot query and returns up to k candidates ordered by
// descending vector similarity. It never returns an error; degraded stages
// are logged and produce a smaller (possibly empty) candidate set.
func (r *Retriever) Retrieve(ctx context.Context, pivotQuery string, k int) []Candidate {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{pivotQuery})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query, continuing without context", "error", err)
		return nil
	}
	if len(embeddings) == 0 {
		logger.ErrorContext(ctx, "no embedding returned for query")
		return nil
	}
	// The index holds normalized vectors; inner product is only cosine
	// similarity if the query is normalized too.
	queryVector := vectorindex.NormalizeL2(embeddings[0])

	hits, err := r.index.Search(queryVector, k)
	if err != nil {
		logger.ErrorContext(ctx, "vector index search failed, continuing without context", "error", err)
		return nil
	}

	// Resolve hit positions to chunk references, dropping sentinel or
	// out-of-range positions. A short index is not an error.
	type located struct {
		ref   vectorindex.ChunkRef
		score float32
	}
	resolved := make([]located, 0, len(hits))
	neededDocs := make(map[string]struct{})
	for _, hit := range hits {
		ref, ok := r.index.Metadata(hit.Position)
		if !ok {
			logger.DebugContext(ctx, "dropping unresolvable index position", "position", hit.Position)
			continue
		}
		resolved = append(resolved, located{ref: ref, score: hit.Score})
		neededDocs[ref.Document] = struct{}{}
	}

	// Load each referenced document once and re-chunk it with the size the
	// index was built with.
	chunksByDoc := make(map[string][]string, len(neededDocs))
	for name := range neededDocs {
		text, err := r.docs.ReadDocument(name)
		if err != nil {
			logger.WarnContext(ctx, "failed to load source document", "document", name, "error", err)
			continue
		}
		chunksByDoc[name] = chunk.Split(text, r.index.ChunkSize())
	}

	candidates := make([]Candidate, 0, len(resolved))
	for _, loc := range resolved {
		docChunks, ok := chunksByDoc[loc.ref.Document]
		if !ok {
			continue
		}
		if loc.ref.Ordinal < 0 || loc.ref.Ordinal >= len(docChunks) {
			// The document shrank since the index was built; a stale
			// ordinal is a data-consistency anomaly, not a failure.
			logger.WarnContext(ctx, "chunk ordinal out of range, dropping candidate",
				"document", loc.ref.Document,
				"ordinal", loc.ref.Ordinal,
				"chunks", len(docChunks),
			)
			continue
		}
		candidates = append(candidates, Candidate{
			Document: loc.ref.Document,
			Ordinal:  loc.ref.Ordinal,
			Text:     docChunks[loc.ref.Ordinal],
			Score:    loc.score,
		})
	}

	logger.InfoContext(ctx, "retrieval completed",
		"hits", len(hits),
		"candidates", len(candidates),
		"documents_loaded", len(chunksByDoc),
	)
	return candidates
}
