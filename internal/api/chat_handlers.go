package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/assistant"
)

// ChatHandlers serves the conversational product-search assistant.
type ChatHandlers struct {
	service *assistant.Service
}

func NewChatHandlers(service *assistant.Service) *ChatHandlers {
	return &ChatHandlers{service: service}
}

// Search answers a shopper's free-text query with matching products. The
// session cookie scopes the conversation history.
func (h *ChatHandlers) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		respondJSONError(w, "query is required", http.StatusBadRequest)
		return
	}

	reply, err := h.service.Search(r.Context(), cartSession(w, r), req.Query)
	if err != nil {
		respondJSONError(w, "Search failed", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}
