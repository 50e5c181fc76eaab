package rag

import (
	"context"
	"sort"
	"strings"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
)

// contextSeparator joins selected chunks into the final context string.
// Kept visible so the model can tell chunk boundaries apart.
const contextSeparator = "\n\n---\n\n"

// rerankCandidates scores candidates against the pivot query with the
// cross-encoder and returns the top finalK chunks, most relevant first.
// An empty candidate set returns empty: that is the normal "nothing
// relevant" path. A reranker failure falls back to vector order.
func rerankCandidates(ctx context.Context, reranker Reranker, pivotQuery string, candidates []Candidate, finalK int) []RerankedChunk {
	logger := contextutil.LoggerFromContext(ctx)

	if len(candidates) == 0 {
		return nil
	}
	if finalK <= 0 {
		finalK = len(candidates)
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	results, err := reranker.Rerank(ctx, pivotQuery, texts)
	if err != nil {
		logger.WarnContext(ctx, "reranking failed, falling back to vector order", "error", err)
		n := finalK
		if n > len(candidates) {
			n = len(candidates)
		}
		fallback := make([]RerankedChunk, n)
		for i := 0; i < n; i++ {
			fallback[i] = RerankedChunk{Text: candidates[i].Text, Score: float64(candidates[i].Score)}
		}
		return fallback
	}

	scored := make([]RerankedChunk, len(results))
	for i, res := range results {
		scored[i] = RerankedChunk{Text: texts[res.Index], Score: res.Score}
	}
	// Stable sort keeps re-scoring order-idempotent even with tied scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if finalK < len(scored) {
		scored = scored[:finalK]
	}
	logger.InfoContext(ctx, "reranking completed", "candidates", len(candidates), "selected", len(scored))
	return scored
}

// buildContext concatenates chunk texts, most relevant first. The model is
// instructed to prioritize information found earlier, so order matters.
func buildContext(chunks []RerankedChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, contextSeparator)
}
