package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/services"
	"unifiedchat-backend/pkg/httputil"
)

// ChatService defines the interface expected from the chat service.
type ChatService interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// ChatHandlers handles HTTP requests related to chats.
type ChatHandlers struct {
	chatService ChatService
	logger      *zap.Logger
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService ChatService, logger *zap.Logger) *ChatHandlers {
	return &ChatHandlers{chatService: chatService, logger: logger.Named("chat_handler")}
}

// HandleChat handles POST /chat. Generation failures are part of a 200 reply.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Missing chatbot_id or message")
		return
	}
	defer r.Body.Close()

	resp, err := h.chatService.Chat(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, "Missing chatbot_id or message")
		case errors.Is(err, services.ErrChatbotNotFound):
			httputil.RespondError(w, http.StatusNotFound, "Chatbot not found")
		default:
			h.logger.Error("Chat failed", zap.String("chatbot_id", req.ChatbotID), zap.Error(err))
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to process chat message")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
