package handlers

import (
	"context"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/sources"
)

type mockConnectorService struct {
	connectFn func(ctx context.Context, req models.ConnectRequest) (*models.Connector, error)
	testFn    func(ctx context.Context, id string) (sources.Result, error)
}

func (m *mockConnectorService) Connect(ctx context.Context, req models.ConnectRequest) (*models.Connector, error) {
	return m.connectFn(ctx, req)
}

func (m *mockConnectorService) TestConnection(ctx context.Context, id string) (sources.Result, error) {
	return m.testFn(ctx, id)
}

type mockChatbotService struct {
	saveFn    func(ctx context.Context, req models.SaveChatbotRequest) (*models.Chatbot, error)
	listFn    func(ctx context.Context, username string) ([]models.ChatbotSummary, error)
	historyFn func(ctx context.Context, chatbotID string) ([]models.HistoryEntry, error)
	deleteFn  func(ctx context.Context, chatbotID string) error
}

func (m *mockChatbotService) Save(ctx context.Context, req models.SaveChatbotRequest) (*models.Chatbot, error) {
	return m.saveFn(ctx, req)
}

func (m *mockChatbotService) List(ctx context.Context, username string) ([]models.ChatbotSummary, error) {
	return m.listFn(ctx, username)
}

func (m *mockChatbotService) History(ctx context.Context, chatbotID string) ([]models.HistoryEntry, error) {
	return m.historyFn(ctx, chatbotID)
}

func (m *mockChatbotService) Delete(ctx context.Context, chatbotID string) error {
	return m.deleteFn(ctx, chatbotID)
}

type mockChatService struct {
	chatFn func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

func (m *mockChatService) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	return m.chatFn(ctx, req)
}
