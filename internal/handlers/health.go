package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Mordris/ai-chatbot-university-Thalassa/internal/contextutil"
)

// IndexInfo is the read-only view of the vector index the health check needs.
type IndexInfo interface {
	Len() int
	Dimension() int
}

// HealthHandler reports whether the service's critical dependency, the
// loaded vector index, is usable.
type HealthHandler struct {
	index IndexInfo
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(index IndexInfo) *HealthHandler {
	return &HealthHandler{index: index}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	var issues []string

	if h.index != nil && h.index.Len() > 0 {
		checks["vector_index"] = "ok"
	} else {
		checks["vector_index"] = "empty"
		issues = append(issues, "vector_index_empty")
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if len(issues) > 0 {
		response.Issues = issues
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
