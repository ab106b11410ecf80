package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"unifiedchat-backend/internal/llm"
	"unifiedchat-backend/internal/metrics"
	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/store"
)

// promptEnricher is the part of Enricher the chat flow depends on.
type promptEnricher interface {
	Enrich(ctx context.Context, bot *models.Chatbot, message string) string
}

// ChatService runs one chat turn: persist the user message, enrich it, generate a reply
// and persist the reply.
type ChatService struct {
	store        store.Store
	enricher     promptEnricher
	generator    llm.Generator
	defaultModel string
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewChatService(s store.Store, enricher promptEnricher, generator llm.Generator, defaultModel string, m *metrics.Metrics, logger *zap.Logger) *ChatService {
	return &ChatService{
		store:        s,
		enricher:     enricher,
		generator:    generator,
		defaultModel: defaultModel,
		metrics:      m,
		logger:       logger.Named("chat"),
	}
}

// Chat returns a reply for every valid request. Generation failures become the reply text
// "Gemini API error: <reason>"; only validation, unknown chatbots and store failures are errors.
func (s *ChatService) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if req.ChatbotID == "" || req.Message == nil {
		return nil, ErrMissingFields
	}
	message := *req.Message

	bot, err := s.store.GetChatbot(ctx, req.ChatbotID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChatbotNotFound
		}
		return nil, fmt.Errorf("failed to load chatbot: %w", err)
	}

	if _, err := s.store.AppendMessage(ctx, bot.ID, models.RoleUser, message); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	prompt := s.enricher.Enrich(ctx, bot, message)

	model := bot.GeminiModel
	if model == "" {
		model = s.defaultModel
	}
	reply, err := s.generator.Generate(ctx, bot.GeminiAPIKey, model, prompt)
	s.metrics.ObserveGeneration(model, err == nil)
	if err != nil {
		s.logger.Warn("generation failed", zap.String("chatbot_id", bot.ID), zap.String("model", model), zap.Error(err))
		reply = "Gemini API error: " + err.Error()
	}

	if _, err := s.store.AppendMessage(ctx, bot.ID, models.RoleBot, reply); err != nil {
		return nil, fmt.Errorf("failed to save bot reply: %w", err)
	}
	s.metrics.ObserveChat()
	return &models.ChatResponse{Reply: reply}, nil
}

var _ promptEnricher = (*Enricher)(nil)
var _ connectorFetcher = (*ConnectorService)(nil)
