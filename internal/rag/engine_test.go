package rag

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/llm"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/session"
)

var testNow = time.Date(2024, 10, 26, 12, 0, 0, 0, time.UTC)

func newTestEngine(detector *fakeDetector, translator *fakeTranslator, retriever *fakeRetriever, reranker *fakeReranker, chat ChatClient) Engine {
	return NewEngine(detector, translator, retriever, reranker, chat, 10, 4, 5*time.Second)
}

func TestAnswerTranslatesForRetrievalOnly(t *testing.T) {
	detector := &fakeDetector{lang: "tr"}
	translator := &fakeTranslator{translated: "when are the final exams?"}
	retriever := &fakeRetriever{candidates: []Candidate{{Text: "Güz Finalleri: 6-19 Ocak 2025.", Score: 0.9}}}
	reranker := &fakeReranker{results: []llm.RerankResult{{Index: 0, Score: 0.8}}}
	chat := &fakeChat{answer: "Final sınavları 6 Ocak 2025'te başlayacaktır."}

	e := newTestEngine(detector, translator, retriever, reranker, chat)
	answer := e.Answer(context.Background(), "Final sınavları ne zaman?", nil, testNow)

	if answer.Language != "tr" {
		t.Fatalf("expected language tr, got %q", answer.Language)
	}
	if retriever.lastQuery != "when are the final exams?" {
		t.Fatalf("expected retrieval to use pivot text, got %q", retriever.lastQuery)
	}
	if retriever.lastK != 10 {
		t.Fatalf("expected retrieval k 10, got %d", retriever.lastK)
	}
	// The generative model must see the original-language question.
	last := chat.messages[len(chat.messages)-1]
	if !strings.Contains(last.Content, "Question: Final sınavları ne zaman?") {
		t.Fatalf("expected original query in final message, got %q", last.Content)
	}
	if answer.Text != "Final sınavları 6 Ocak 2025'te başlayacaktır." {
		t.Fatalf("unexpected answer: %q", answer.Text)
	}
}

func TestAnswerTranslationFailureSearchesOriginal(t *testing.T) {
	detector := &fakeDetector{lang: "tr"}
	translator := &fakeTranslator{err: context.DeadlineExceeded}
	retriever := &fakeRetriever{}
	reranker := &fakeReranker{}
	chat := &fakeChat{answer: "cevap"}

	e := newTestEngine(detector, translator, retriever, reranker, chat)
	e.Answer(context.Background(), "Burslar hakkında bilgi", nil, testNow)

	if retriever.lastQuery != "Burslar hakkında bilgi" {
		t.Fatalf("expected original text used for retrieval on translation failure, got %q", retriever.lastQuery)
	}
}

func TestAnswerPivotLanguageSkipsTranslation(t *testing.T) {
	detector := &fakeDetector{lang: "en"}
	translator := &fakeTranslator{translated: "should not be used"}
	retriever := &fakeRetriever{}
	chat := &fakeChat{answer: "answer"}

	e := newTestEngine(detector, translator, retriever, &fakeReranker{}, chat)
	e.Answer(context.Background(), "When are the exams?", nil, testNow)

	if translator.calls != 0 {
		t.Fatalf("expected no translation for pivot-language query, got %d calls", translator.calls)
	}
	if retriever.lastQuery != "When are the exams?" {
		t.Fatalf("unexpected retrieval query: %q", retriever.lastQuery)
	}
}

func TestAnswerNoContextUsesPlaceholder(t *testing.T) {
	detector := &fakeDetector{lang: "tr"}
	retriever := &fakeRetriever{} // no candidates
	chat := &fakeChat{answer: "Üzgünüm, bu konuda bilgim yok."}

	e := newTestEngine(detector, &fakeTranslator{translated: "q"}, retriever, &fakeReranker{}, chat)
	answer := e.Answer(context.Background(), "Bilinmeyen konu", nil, testNow)

	last := chat.messages[len(chat.messages)-1]
	if !strings.Contains(last.Content, "İlgili bağlam bilgisi bulunamadı.") {
		t.Fatalf("expected localized no-context placeholder in prompt, got %q", last.Content)
	}
	if answer.Text != "Üzgünüm, bu konuda bilgim yok." {
		t.Fatalf("expected model answer returned, got %q", answer.Text)
	}
}

func TestAnswerNilChatClient(t *testing.T) {
	e := NewEngine(&fakeDetector{lang: "en"}, &fakeTranslator{}, &fakeRetriever{}, &fakeReranker{}, nil, 10, 4, time.Second)
	answer := e.Answer(context.Background(), "hello", nil, testNow)
	if answer.Text != "Sorry, the AI service could not be initialized." {
		t.Fatalf("expected init-failure apology, got %q", answer.Text)
	}
}

func TestAnswerGenerationErrorApologies(t *testing.T) {
	tests := []struct {
		name string
		lang string
		err  error
		want string
	}{
		{
			name: "rate limited turkish",
			lang: "tr",
			err:  llm.ErrRateLimited,
			want: "Üzgünüm, AI servisi şu anda çok meşgul. Lütfen birazdan tekrar deneyin.",
		},
		{
			name: "rate limited english",
			lang: "en",
			err:  llm.ErrRateLimited,
			want: "Sorry, the AI service is very busy right now. Please try again shortly.",
		},
		{
			name: "timeout",
			lang: "tr",
			err:  llm.ErrTimeout,
			want: "Üzgünüm, AI servisine yapılan istek zaman aşımına uğradı. Lütfen tekrar deneyin.",
		},
		{
			name: "deadline exceeded",
			lang: "en",
			err:  context.DeadlineExceeded,
			want: "Sorry, the request to the AI service timed out. Please try again.",
		},
		{
			name: "generic api error",
			lang: "en",
			err:  llm.ErrAPI,
			want: "Sorry, an error occurred while communicating with the AI service.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{err: tt.err}
			e := newTestEngine(&fakeDetector{lang: tt.lang}, &fakeTranslator{translated: "q"}, &fakeRetriever{}, &fakeReranker{}, chat)
			answer := e.Answer(context.Background(), "soru", nil, testNow)
			if answer.Text != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, answer.Text)
			}
		})
	}
}

func TestAnswerIdentityGuard(t *testing.T) {
	tests := []struct {
		name   string
		lang   string
		query  string
		answer string
		want   string
	}{
		{
			name:   "turkish confusion corrected",
			lang:   "tr",
			query:  "Benim adım ne?",
			answer: "Benim adım Thalassa.",
			want:   "Benim adım Thalassa. Size nasıl yardımcı olabilirim?",
		},
		{
			name:   "english confusion corrected",
			lang:   "en",
			query:  "What is my name?",
			answer: "My name is Thalassa.",
			want:   "My name is Thalassa. How can I help you?",
		},
		{
			name:   "correct recall passes through",
			lang:   "tr",
			query:  "Benim adım ne?",
			answer: "Adınız Emre.",
			want:   "Adınız Emre.",
		},
		{
			name:   "other queries never corrected",
			lang:   "en",
			query:  "Who are you?",
			answer: "My name is Thalassa.",
			want:   "My name is Thalassa.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{answer: tt.answer}
			e := newTestEngine(&fakeDetector{lang: tt.lang}, &fakeTranslator{translated: "q"}, &fakeRetriever{}, &fakeReranker{}, chat)
			answer := e.Answer(context.Background(), tt.query, nil, testNow)
			if answer.Text != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, answer.Text)
			}
		})
	}
}

func TestAnswerEmptyGenerationFallsBack(t *testing.T) {
	chat := &fakeChat{answer: ""}
	e := newTestEngine(&fakeDetector{lang: "tr"}, &fakeTranslator{translated: "q"}, &fakeRetriever{}, &fakeReranker{}, chat)
	answer := e.Answer(context.Background(), "soru", nil, testNow)
	if answer.Text != "Üzgünüm, bir yanıt oluşturamadım." {
		t.Fatalf("expected empty-answer fallback, got %q", answer.Text)
	}
}

func TestAnswerPromptCarriesDateHistoryAndContext(t *testing.T) {
	detector := &fakeDetector{lang: "tr"}
	retriever := &fakeRetriever{candidates: []Candidate{{Text: "Güz Finalleri: 6-19 Ocak 2025.", Score: 0.9}}}
	reranker := &fakeReranker{results: []llm.RerankResult{{Index: 0, Score: 0.9}}}
	chat := &fakeChat{answer: "cevap"}
	history := []session.Turn{
		{Role: session.RoleUser, Content: "Benim adım Emre"},
		{Role: session.RoleAssistant, Content: "Merhaba Emre!"},
	}

	e := newTestEngine(detector, &fakeTranslator{translated: "when are the finals"}, retriever, reranker, chat)
	e.Answer(context.Background(), "Final sınavları ne zaman?", history, testNow)

	if len(chat.messages) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d messages", len(chat.messages))
	}
	system := chat.messages[0]
	if system.Role != "system" || !strings.Contains(system.Content, "Current Date: 2024-10-26") {
		t.Fatalf("expected current date in system prompt")
	}
	if !strings.Contains(system.Content, "Güz Finalleri: 6-19 Ocak 2025") {
		t.Fatalf("expected worked examples in system prompt")
	}
	if chat.messages[1].Content != "Benim adım Emre" || chat.messages[2].Content != "Merhaba Emre!" {
		t.Fatalf("expected history turns in order, got %v", chat.messages[1:3])
	}
	last := chat.messages[3]
	if !strings.Contains(last.Content, "Güz Finalleri: 6-19 Ocak 2025.") {
		t.Fatalf("expected retrieved context in final message")
	}
	if chat.params.Temperature != genTemperature || chat.params.MaxTokens != genMaxTokens {
		t.Fatalf("unexpected generation params: %+v", chat.params)
	}
}
