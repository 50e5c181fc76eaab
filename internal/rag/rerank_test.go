package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/llm"
)

func TestRerankCandidatesOrdersByScore(t *testing.T) {
	candidates := []Candidate{
		{Text: "chunk a", Score: 0.9},
		{Text: "chunk b", Score: 0.8},
		{Text: "chunk c", Score: 0.7},
	}
	reranker := &fakeReranker{results: []llm.RerankResult{
		{Index: 0, Score: 0.1},
		{Index: 1, Score: 0.95},
		{Index: 2, Score: 0.5},
	}}

	chunks := rerankCandidates(context.Background(), reranker, "query", candidates, 2)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "chunk b" {
		t.Fatalf("expected cross-encoder winner first, got %q", chunks[0].Text)
	}
	if chunks[1].Text != "chunk c" {
		t.Fatalf("expected second-best chunk, got %q", chunks[1].Text)
	}
}

func TestRerankCandidatesEmpty(t *testing.T) {
	reranker := &fakeReranker{}
	if got := rerankCandidates(context.Background(), reranker, "query", nil, 4); got != nil {
		t.Fatalf("expected nil for empty candidates, got %v", got)
	}
	if reranker.calls != 0 {
		t.Fatalf("expected no reranker call for empty candidates, got %d", reranker.calls)
	}
}

func TestRerankCandidatesFallbackOnError(t *testing.T) {
	candidates := []Candidate{
		{Text: "best by vector", Score: 0.9},
		{Text: "second by vector", Score: 0.8},
		{Text: "third by vector", Score: 0.7},
	}
	reranker := &fakeReranker{err: fmt.Errorf("rerank service down")}

	chunks := rerankCandidates(context.Background(), reranker, "query", candidates, 2)
	if len(chunks) != 2 {
		t.Fatalf("expected fallback to return finalK chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "best by vector" || chunks[1].Text != "second by vector" {
		t.Fatalf("expected vector order preserved in fallback, got %v", chunks)
	}
}

func TestRerankCandidatesFewerThanFinalK(t *testing.T) {
	candidates := []Candidate{{Text: "only one", Score: 0.5}}
	reranker := &fakeReranker{results: []llm.RerankResult{{Index: 0, Score: 0.4}}}

	chunks := rerankCandidates(context.Background(), reranker, "query", candidates, 4)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestRerankCandidatesStableOnTies(t *testing.T) {
	candidates := []Candidate{
		{Text: "first", Score: 0.9},
		{Text: "second", Score: 0.8},
	}
	reranker := &fakeReranker{results: []llm.RerankResult{
		{Index: 0, Score: 0.5},
		{Index: 1, Score: 0.5},
	}}

	chunks := rerankCandidates(context.Background(), reranker, "query", candidates, 2)
	if chunks[0].Text != "first" || chunks[1].Text != "second" {
		t.Fatalf("expected tied scores to keep input order, got %v", chunks)
	}
}

func TestBuildContext(t *testing.T) {
	if got := buildContext(nil); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}

	got := buildContext([]RerankedChunk{
		{Text: "most relevant"},
		{Text: "less relevant"},
	})
	want := "most relevant\n\n---\n\nless relevant"
	if got != want {
		t.Fatalf("unexpected context:\n%q\nwant:\n%q", got, want)
	}
}
