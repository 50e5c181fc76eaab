package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/rag"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/session"
)

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Query     string
	SessionID string
}

// ChatResponse echoes the query and carries the answer plus the session
// identifier the conversation continues under.
type ChatResponse struct {
	Query     string
	Answer    string
	SessionID string
}

// ChatService provides the single inbound query operation.
type ChatService interface {
	// Chat validates the query, runs the answering pipeline, and records
	// the exchange in the session history.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

type chatService struct {
	engine         rag.Engine
	sessions       *session.Store
	maxQueryLength int
	now            func() time.Time
}

// NewChatService creates a new ChatService.
func NewChatService(engine rag.Engine, sessions *session.Store, maxQueryLength int) ChatService {
	return &chatService{
		engine:         engine,
		sessions:       sessions,
		maxQueryLength: maxQueryLength,
		now:            time.Now,
	}
}

// Chat handles one query. Input errors reject synchronously before any
// pipeline or session work; everything past validation produces an answer.
func (s *chatService) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Query) == "" {
		logger.WarnContext(ctx, "empty query rejected")
		return ChatResponse{}, &ValidationError{
			Field:   "query",
			Message: "cannot be empty",
		}
	}
	if n := utf8.RuneCountInString(req.Query); n > s.maxQueryLength {
		logger.WarnContext(ctx, "over-length query rejected", "length", n, "limit", s.maxQueryLength)
		return ChatResponse{}, &ValidationError{
			Field:   "query",
			Message: "exceeds maximum length",
		}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		logger.InfoContext(ctx, "generated new session", "session_id", sessionID)
	}

	history := s.sessions.Get(sessionID)
	logger.InfoContext(ctx, "processing query",
		"session_id", sessionID,
		"history_turns", len(history)/2,
	)

	answer := s.engine.Answer(ctx, req.Query, history, s.now())

	// Apologies count as turns too: the user saw them, the model should
	// know it said them.
	s.sessions.Append(sessionID, req.Query, answer.Text)
	logger.InfoContext(ctx, "query answered",
		"session_id", sessionID,
		"language", answer.Language,
		"answer_length", len(answer.Text),
	)

	return ChatResponse{
		Query:     req.Query,
		Answer:    answer.Text,
		SessionID: sessionID,
	}, nil
}
