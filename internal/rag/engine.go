package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/language"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/llm"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/session"
)

const (
	// Low temperature favors instruction adherence over variety.
	genTemperature = 0.15
	genMaxTokens   = 400
)

// Fixed user-facing strings, Turkish first. The generative model normally
// answers in the query's language; these cover the paths where it never
// gets the chance.
var (
	msgNoContext = localizedMessage{
		tr: "İlgili bağlam bilgisi bulunamadı.",
		en: "No relevant context found.",
	}
	msgEmptyAnswer = localizedMessage{
		tr: "Üzgünüm, bir yanıt oluşturamadım.",
		en: "Sorry, I could not produce an answer.",
	}
	msgInitFailure = localizedMessage{
		tr: "Üzgünüm, AI servisi başlatılamadı.",
		en: "Sorry, the AI service could not be initialized.",
	}
	msgRateLimited = localizedMessage{
		tr: "Üzgünüm, AI servisi şu anda çok meşgul. Lütfen birazdan tekrar deneyin.",
		en: "Sorry, the AI service is very busy right now. Please try again shortly.",
	}
	msgTimeout = localizedMessage{
		tr: "Üzgünüm, AI servisine yapılan istek zaman aşımına uğradı. Lütfen tekrar deneyin.",
		en: "Sorry, the request to the AI service timed out. Please try again.",
	}
	msgAPIError = localizedMessage{
		tr: "Üzgünüm, AI servisiyle iletişim kurulurken bir hata oluştu.",
		en: "Sorry, an error occurred while communicating with the AI service.",
	}
	msgIdentityCorrection = localizedMessage{
		tr: "Benim adım Thalassa. Size nasıl yardımcı olabilirim?",
		en: "My name is Thalassa. How can I help you?",
	}
)

type localizedMessage struct {
	tr string
	en string
}

func (m localizedMessage) in(lang string) string {
	if lang == "tr" {
		return m.tr
	}
	return m.en
}

// Answer is the pipeline's result: the answer text and the language it was
// produced for.
type Answer struct {
	Text     string
	Language string
}

// CandidateRetriever produces candidate chunks for a pivot-language query.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, pivotQuery string, k int) []Candidate
}

// Engine runs the full query-answering pipeline:
// detect, normalize to the pivot language, retrieve, rerank, generate,
// guard. Every stage degrades on failure; Answer never fails the request.
type Engine interface {
	Answer(ctx context.Context, query string, history []session.Turn, now time.Time) Answer
}

type engine struct {
	detector   language.Detector
	translator language.Translator
	retriever  CandidateRetriever
	reranker   Reranker
	chat       ChatClient

	retrievalK        int
	finalK            int
	generationTimeout time.Duration
}

// NewEngine wires the pipeline from its collaborators. All dependencies are
// injected so the pipeline can run against fakes in tests.
func NewEngine(
	detector language.Detector,
	translator language.Translator,
	retriever CandidateRetriever,
	reranker Reranker,
	chat ChatClient,
	retrievalK, finalK int,
	generationTimeout time.Duration,
) Engine {
	return &engine{
		detector:          detector,
		translator:        translator,
		retriever:         retriever,
		reranker:          reranker,
		chat:              chat,
		retrievalK:        retrievalK,
		finalK:            finalK,
		generationTimeout: generationTimeout,
	}
}

// Answer runs one query through the pipeline and returns the answer in the
// query's language. History is read-only here; recording the exchange is
// the caller's responsibility.
func (e *engine) Answer(ctx context.Context, query string, history []session.Turn, now time.Time) Answer {
	logger := contextutil.LoggerFromContext(ctx)

	lang := e.detector.Detect(query)
	logger.InfoContext(ctx, "query language detected", "language", lang)

	// Normalize to the pivot language for retrieval only; the generative
	// model always sees the original query.
	pivotQuery := query
	if lang != language.Pivot {
		translated, err := e.translator.ToPivot(ctx, query, lang)
		if err != nil {
			logger.WarnContext(ctx, "translation failed, searching with original text", "error", err)
		} else {
			pivotQuery = translated
		}
	}

	candidates := e.retriever.Retrieve(ctx, pivotQuery, e.retrievalK)
	chunks := rerankCandidates(ctx, e.reranker, pivotQuery, candidates, e.finalK)

	contextStr := buildContext(chunks)
	if contextStr == "" {
		logger.InfoContext(ctx, "no relevant context found for query")
		contextStr = msgNoContext.in(lang)
	}

	if e.chat == nil {
		return Answer{Text: msgInitFailure.in(lang), Language: lang}
	}

	messages := buildMessages(systemPrompt(now.Format("2006-01-02")), history, contextStr, query)

	genCtx, cancel := context.WithTimeout(ctx, e.generationTimeout)
	defer cancel()

	answer, err := e.chat.ChatWithMessages(genCtx, messages, llm.ChatParams{
		Temperature: genTemperature,
		MaxTokens:   genMaxTokens,
	})
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		return Answer{Text: apologyFor(err, lang), Language: lang}
	}

	if corrected, ok := guardIdentityConfusion(query, answer, lang); ok {
		logger.WarnContext(ctx, "identity confusion detected, substituting correction",
			"query", query,
			"rejected_answer", answer,
		)
		answer = corrected
	}

	if answer == "" {
		answer = msgEmptyAnswer.in(lang)
	}
	return Answer{Text: answer, Language: lang}
}

// apologyFor maps a generation failure onto its fixed user-facing apology.
func apologyFor(err error, lang string) string {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return msgRateLimited.in(lang)
	case errors.Is(err, llm.ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
		return msgTimeout.in(lang)
	default:
		return msgAPIError.in(lang)
	}
}

// guardIdentityConfusion catches the model claiming the user's recalled
// name as its own. Deliberately a literal match on the two known phrasings:
// the upstream model's failure mode is this specific, and a broader intent
// check would be guessing.
func guardIdentityConfusion(query, answer, lang string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q != "benim adım ne?" && q != "what is my name?" {
		return "", false
	}
	a := strings.ToLower(answer)
	if strings.HasPrefix(a, "benim adım") || strings.HasPrefix(a, "my name is") {
		return msgIdentityCorrection.in(lang), true
	}
	return "", false
}
