package postgres

import (
	"context"
	"fmt"
	"time"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/store"
)

// --- Chat History Methods ---

const appendMessage = `-- name: AppendMessage :one
INSERT INTO chat_history (chatbot_id, role, message, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id;
`

func (s *PostgresStore) AppendMessage(ctx context.Context, chatbotID string, role models.Role, text string) (*models.ChatMessage, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidRole, role)
	}
	msg := &models.ChatMessage{
		ChatbotID: chatbotID,
		Role:      role,
		Message:   text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.QueryRow(ctx, appendMessage, chatbotID, string(role), text, msg.CreatedAt).Scan(&msg.ID); err != nil {
		s.logPgError("AppendMessage", err)
		return nil, fmt.Errorf("database error appending message: %w", err)
	}
	return msg, nil
}

const getMessages = `-- name: GetMessages :many
SELECT id, chatbot_id, role, message, created_at
FROM chat_history
WHERE chatbot_id = $1
ORDER BY id ASC
LIMIT $2;
`

func (s *PostgresStore) GetMessages(ctx context.Context, chatbotID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	rows, err := s.db.Query(ctx, getMessages, chatbotID, limit)
	if err != nil {
		s.logPgError("GetMessages", err)
		return nil, fmt.Errorf("error querying chat history: %w", err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var (
			m    models.ChatMessage
			role string
		)
		if err := rows.Scan(&m.ID, &m.ChatbotID, &role, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning chat history row: %w", err)
		}
		m.Role = models.Role(role)
		m.CreatedAt = m.CreatedAt.UTC()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat history rows: %w", err)
	}
	return messages, nil
}
