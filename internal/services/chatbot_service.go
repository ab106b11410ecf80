package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/store"
)

// ChatbotService handles business logic related to chatbots.
type ChatbotService struct {
	store        store.Store
	defaultModel string
	historyLimit int
	logger       *zap.Logger
}

// NewChatbotService creates a new ChatbotService. defaultModel applies when a save omits
// gemini_model.
func NewChatbotService(s store.Store, defaultModel string, historyLimit int, logger *zap.Logger) *ChatbotService {
	return &ChatbotService{
		store:        s,
		defaultModel: defaultModel,
		historyLimit: historyLimit,
		logger:       logger.Named("chatbots"),
	}
}

// Save creates or fully replaces the chatbot keyed by req.ID.
func (s *ChatbotService) Save(ctx context.Context, req models.SaveChatbotRequest) (*models.Chatbot, error) {
	if req.ID == "" || req.Username == "" || req.ChatbotName == "" || req.GeminiAPIKey == "" || req.ConnectorID == "" {
		return nil, ErrMissingFields
	}

	model := s.defaultModel
	if req.GeminiModel != nil {
		model = *req.GeminiModel
	}
	extra := req.ExtraConfig
	if len(extra) == 0 || string(extra) == "null" {
		extra = json.RawMessage(`{}`)
	}

	bot := models.Chatbot{
		ID:           req.ID,
		Username:     req.Username,
		Name:         req.ChatbotName,
		GeminiAPIKey: req.GeminiAPIKey,
		GeminiModel:  model,
		ConnectorID:  req.ConnectorID,
		ExtraConfig:  extra,
	}
	if err := s.store.UpsertChatbot(ctx, bot); err != nil {
		return nil, fmt.Errorf("failed to save chatbot: %w", err)
	}
	s.logger.Info("chatbot saved", zap.String("chatbot_id", bot.ID), zap.String("model", bot.GeminiModel), zap.String("connector_id", bot.ConnectorID))
	return &bot, nil
}

// List returns the chatbots owned by username in creation order.
func (s *ChatbotService) List(ctx context.Context, username string) ([]models.ChatbotSummary, error) {
	bots, err := s.store.ListChatbots(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list chatbots: %w", err)
	}
	out := make([]models.ChatbotSummary, len(bots))
	for i, b := range bots {
		out[i] = models.ChatbotSummary{ID: b.ID, ChatbotName: b.Name, ConnectorID: b.ConnectorID}
	}
	return out, nil
}

// History returns the oldest messages first, capped at the configured limit. Unknown
// chatbots have an empty history.
func (s *ChatbotService) History(ctx context.Context, chatbotID string) ([]models.HistoryEntry, error) {
	msgs, err := s.store.GetMessages(ctx, chatbotID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	out := make([]models.HistoryEntry, len(msgs))
	for i, m := range msgs {
		out[i] = models.HistoryEntry{Role: m.Role, Message: m.Message, CreatedAt: m.CreatedAt}
	}
	return out, nil
}

// Delete removes the chatbot and its history. Deleting an unknown id succeeds.
func (s *ChatbotService) Delete(ctx context.Context, chatbotID string) error {
	if err := s.store.DeleteChatbot(ctx, chatbotID); err != nil {
		return fmt.Errorf("failed to delete chatbot: %w", err)
	}
	s.logger.Info("chatbot deleted", zap.String("chatbot_id", chatbotID))
	return nil
}
