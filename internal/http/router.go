package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/handlers"
	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	IndexInfo   handlers.IndexInfo
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	healthHandler := handlers.NewHealthHandler(deps.IndexInfo)

	r.Method(http.MethodGet, "/chat", chatHandler)
	r.Method(http.MethodGet, "/api/health", healthHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "Welcome to the Thalassa AI Assistant API",
		})
	})

	return r
}
