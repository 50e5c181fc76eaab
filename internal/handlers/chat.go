package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/service"
)

// ChatHandler handles HTTP requests for the query-answering endpoint.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatResponse represents the HTTP response payload for a query.
type ChatResponse struct {
	Query     string `json:"query"`
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP answers GET /chat?query=...&session_id=... requests.
// The session identifier is optional; a fresh one is generated and returned
// when absent so the client can continue the conversation.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req := service.ChatRequest{
		Query:     r.URL.Query().Get("query"),
		SessionID: r.URL.Query().Get("session_id"),
	}

	resp, err := h.chatService.Chat(ctx, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ChatResponse{
		Query:     resp.Query,
		Answer:    resp.Answer,
		SessionID: resp.SessionID,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleServiceError maps service errors to HTTP status codes. Only input
// validation errors ever reach this path; the pipeline itself degrades to
// fallback answers instead of failing.
func (h *ChatHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "service error", "error", err)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Message {
		case "cannot be empty":
			h.writeError(w, http.StatusBadRequest, "Query cannot be empty.")
		default:
			h.writeError(w, http.StatusBadRequest, "Message exceeds the maximum allowed length.")
		}
		return
	}

	h.writeError(w, http.StatusInternalServerError, "Failed to process query")
}

// writeError writes an error response.
func (h *ChatHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
