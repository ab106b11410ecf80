package store

import (
	"context"
	"errors"

	"unifiedchat-backend/internal/models"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRole is returned when a message role is neither user nor bot.
	ErrInvalidRole = errors.New("invalid message role")
)

// DefaultHistoryLimit caps GetMessages when the caller passes a non-positive limit.
const DefaultHistoryLimit = 500

// Store defines the interface for database operations.
// Writes are single-row upserts keyed by primary id; concurrent writers to the same key race
// and the last one wins.
type Store interface {
	// Init creates the tables if they are absent.
	Init(ctx context.Context) error
	Close() error

	// Connector operations
	UpsertConnector(ctx context.Context, c models.Connector) error
	GetConnector(ctx context.Context, id string) (*models.Connector, error)

	// Chatbot operations
	UpsertChatbot(ctx context.Context, b models.Chatbot) error
	ListChatbots(ctx context.Context, username string) ([]models.Chatbot, error)
	GetChatbot(ctx context.Context, id string) (*models.Chatbot, error)
	DeleteChatbot(ctx context.Context, id string) error // Also removes the chatbot's messages
	SetChatbotModel(ctx context.Context, model string) (int64, error)

	// Chat history operations
	AppendMessage(ctx context.Context, chatbotID string, role models.Role, text string) (*models.ChatMessage, error)
	GetMessages(ctx context.Context, chatbotID string, limit int) ([]models.ChatMessage, error)

	// User operations
	UpsertUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, username string) (*models.User, error)
}
