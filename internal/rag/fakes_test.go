package rag

import (
	"context"
	"fmt"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/llm"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/vectorindex"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, len(f.vector))
		copy(vec, f.vector)
		out[i] = vec
	}
	return out, nil
}

type fakeSearcher struct {
	hits      []vectorindex.Hit
	refs      map[int]vectorindex.ChunkRef
	chunkSize int
	err       error
}

func (f *fakeSearcher) Search(query []float32, k int) ([]vectorindex.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeSearcher) Metadata(pos int) (vectorindex.ChunkRef, bool) {
	ref, ok := f.refs[pos]
	return ref, ok
}

func (f *fakeSearcher) ChunkSize() int {
	if f.chunkSize == 0 {
		return 500
	}
	return f.chunkSize
}

type fakeDocStore struct {
	docs  map[string]string
	reads map[string]int
}

func (f *fakeDocStore) ReadDocument(name string) (string, error) {
	if f.reads == nil {
		f.reads = make(map[string]int)
	}
	f.reads[name]++
	text, ok := f.docs[name]
	if !ok {
		return "", fmt.Errorf("no such document: %s", name)
	}
	return text, nil
}

type fakeReranker struct {
	results []llm.RerankResult
	err     error
	calls   int
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, documents []string) ([]llm.RerankResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeChat struct {
	answer   string
	err      error
	messages []llm.Message
	params   llm.ChatParams
	calls    int
}

func (f *fakeChat) ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
	f.calls++
	f.messages = messages
	f.params = params
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeRetriever struct {
	candidates []Candidate
	lastQuery  string
	lastK      int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, pivotQuery string, k int) []Candidate {
	f.lastQuery = pivotQuery
	f.lastK = k
	return f.candidates
}

type fakeDetector struct {
	lang string
}

func (f *fakeDetector) Detect(text string) string { return f.lang }

type fakeTranslator struct {
	translated string
	err        error
	calls      int
}

func (f *fakeTranslator) ToPivot(ctx context.Context, text, sourceLang string) (string, error) {
	f.calls++
	if f.err != nil {
		return text, f.err
	}
	return f.translated, nil
}
