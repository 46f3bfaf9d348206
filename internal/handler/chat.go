package handler

import (
	"log/slog"
	"net/http"

	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// ChatHandler serves the help assistant
type ChatHandler struct {
	chatService services.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService services.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat answers one assistant message. The route is public: the guided
// help flow is how new visitors learn what the service does.
// POST /chatbot
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatService.Chat(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
