package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/resume-analyzer/apiserver/internal/services"
	"github.com/resume-analyzer/apiserver/types"
)

// ChatbotHandler exposes the rule-based candidate query assistant.
type ChatbotHandler struct {
	chatbotService *services.ChatbotService
}

func NewChatbotHandler(chatbotService *services.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService}
}

// ChatbotRouter registers the chatbot route; admin-only.
func ChatbotRouter(r chi.Router, chatbotService *services.ChatbotService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewChatbotHandler(chatbotService)

	r.With(authMiddleware, RequireRole(types.RoleAdmin)).Post("/", handler.Query)
}

type ChatQueryRequest struct {
	Query string `json:"query"`
}

func (h *ChatbotHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req ChatQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := h.chatbotService.Query(r.Context(), req.Query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to run query")
		return
	}

	writeJSON(w, http.StatusOK, answer)
}
