package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/services"
	"unifiedchat-backend/pkg/httputil"
)

// ChatbotService defines the interface expected from the chatbot service.
type ChatbotService interface {
	Save(ctx context.Context, req models.SaveChatbotRequest) (*models.Chatbot, error)
	List(ctx context.Context, username string) ([]models.ChatbotSummary, error)
	History(ctx context.Context, chatbotID string) ([]models.HistoryEntry, error)
	Delete(ctx context.Context, chatbotID string) error
}

// ChatbotHandlers holds the dependencies for chatbot handlers.
type ChatbotHandlers struct {
	service ChatbotService
	logger  *zap.Logger
}

// NewChatbotHandlers creates a new ChatbotHandlers.
func NewChatbotHandlers(svc ChatbotService, logger *zap.Logger) *ChatbotHandlers {
	return &ChatbotHandlers{service: svc, logger: logger.Named("chatbot_handler")}
}

// SaveChatbot handles POST /save_chatbot
func (h *ChatbotHandlers) SaveChatbot(w http.ResponseWriter, r *http.Request) {
	var req models.SaveChatbotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	bot, err := h.service.Save(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			httputil.RespondError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		h.logger.Error("SaveChatbot failed", zap.String("chatbot_id", req.ID), zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to save chatbot")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Chatbot saved", ChatbotID: bot.ID})
}

// ListChatbots handles GET /list_chatbots/{username}
func (h *ChatbotHandlers) ListChatbots(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	bots, err := h.service.List(r.Context(), username)
	if err != nil {
		h.logger.Error("ListChatbots failed", zap.String("username", username), zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list chatbots")
		return
	}
	if bots == nil {
		bots = []models.ChatbotSummary{}
	}

	httputil.RespondJSON(w, http.StatusOK, bots)
}

// GetChatHistory handles GET /get_chat_history/{chatbot_id}
func (h *ChatbotHandlers) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	chatbotID := chi.URLParam(r, "chatbot_id")

	history, err := h.service.History(r.Context(), chatbotID)
	if err != nil {
		h.logger.Error("GetChatHistory failed", zap.String("chatbot_id", chatbotID), zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to load chat history")
		return
	}
	if history == nil {
		history = []models.HistoryEntry{}
	}

	httputil.RespondJSON(w, http.StatusOK, history)
}

// DeleteChatbot handles DELETE /delete_chatbot/{chatbot_id}. Unknown ids succeed.
func (h *ChatbotHandlers) DeleteChatbot(w http.ResponseWriter, r *http.Request) {
	chatbotID := chi.URLParam(r, "chatbot_id")

	if err := h.service.Delete(r.Context(), chatbotID); err != nil {
		h.logger.Error("DeleteChatbot failed", zap.String("chatbot_id", chatbotID), zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to delete chatbot")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Chatbot and history deleted"})
}
