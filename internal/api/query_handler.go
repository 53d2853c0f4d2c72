package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"urbanisme/internal/domain/assistant"
	applog "urbanisme/internal/platform/log"
)

// QueryHandler serves the question/stats/cache endpoints.
type QueryHandler struct {
	service AssistantService
}

func NewQueryHandler(service AssistantService) *QueryHandler {
	return &QueryHandler{service: service}
}

func (h *QueryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/query", h.Query)
	r.Get("/stats", h.Stats)
	r.Delete("/cache", h.ClearCache)
}

type queryRequest struct {
	Question   string `json:"question"`
	Commune    string `json:"commune,omitempty"`
	Parcelle   string `json:"parcelle,omitempty"`
	UseContext *bool  `json:"use_context,omitempty"` // default true
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	useContext := true
	if req.UseContext != nil {
		useContext = *req.UseContext
	}

	ans, err := h.service.Query(r.Context(), &assistant.QueryRequest{
		Question:   req.Question,
		Commune:    req.Commune,
		Parcelle:   req.Parcelle,
		UseContext: useContext,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "question is required")
			return
		}
		applog.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, ans)
}

func (h *QueryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Stats(r.Context()))
}

func (h *QueryHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.ClearCache(r.Context())
	if err != nil {
		applog.Error("cache clear failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cache clear failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("cache cleared: %d entries removed", deleted),
		"deleted": deleted,
	})
}
