package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/store"
)

// --- Chatbot Methods ---

const upsertChatbot = `-- name: UpsertChatbot :exec
INSERT INTO chatbots (id, username, chatbot_name, gemini_api_key, gemini_model, connector_id, extra_config)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    username = EXCLUDED.username,
    chatbot_name = EXCLUDED.chatbot_name,
    gemini_api_key = EXCLUDED.gemini_api_key,
    gemini_model = EXCLUDED.gemini_model,
    connector_id = EXCLUDED.connector_id,
    extra_config = EXCLUDED.extra_config;
`

func (s *PostgresStore) UpsertChatbot(ctx context.Context, b models.Chatbot) error {
	_, err := s.db.Exec(ctx, upsertChatbot,
		b.ID,
		b.Username,
		b.Name,
		b.GeminiAPIKey,
		b.GeminiModel,
		b.ConnectorID,
		string(b.ExtraConfig),
	)
	if err != nil {
		s.logPgError("UpsertChatbot", err)
		return fmt.Errorf("database error saving chatbot: %w", err)
	}
	return nil
}

const chatbotColumns = `id, COALESCE(username, ''), COALESCE(chatbot_name, ''), COALESCE(gemini_api_key, ''),
    COALESCE(gemini_model, ''), COALESCE(connector_id, ''), COALESCE(extra_config, '{}')`

const getChatbot = `-- name: GetChatbot :one
SELECT ` + chatbotColumns + `
FROM chatbots
WHERE id = $1;
`

func (s *PostgresStore) GetChatbot(ctx context.Context, id string) (*models.Chatbot, error) {
	b, err := scanChatbot(s.db.QueryRow(ctx, getChatbot, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		s.logPgError("GetChatbot", err)
		return nil, fmt.Errorf("database error fetching chatbot: %w", err)
	}
	return b, nil
}

const listChatbots = `-- name: ListChatbots :many
SELECT ` + chatbotColumns + `
FROM chatbots
WHERE username = $1
ORDER BY id;
`

func (s *PostgresStore) ListChatbots(ctx context.Context, username string) ([]models.Chatbot, error) {
	rows, err := s.db.Query(ctx, listChatbots, username)
	if err != nil {
		s.logPgError("ListChatbots", err)
		return nil, fmt.Errorf("error querying chatbots: %w", err)
	}
	defer rows.Close()

	chatbots := []models.Chatbot{}
	for rows.Next() {
		b, err := scanChatbot(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning chatbot row: %w", err)
		}
		chatbots = append(chatbots, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chatbot rows: %w", err)
	}
	return chatbots, nil
}

// DeleteChatbot removes the chatbot and its history in one transaction. Deleting an unknown
// id is not an error.
func (s *PostgresStore) DeleteChatbot(ctx context.Context, id string) error {
	var deleted int64
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chatbots WHERE id = $1`, id); err != nil {
			return fmt.Errorf("database error deleting chatbot: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM chat_history WHERE chatbot_id = $1`, id)
		if err != nil {
			return fmt.Errorf("database error deleting chat history: %w", err)
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		s.logPgError("DeleteChatbot", err)
		return err
	}
	s.logger.Debug("chatbot deleted", zap.String("chatbot_id", id), zap.Int64("messages_deleted", deleted))
	return nil
}

// SetChatbotModel rewrites the model of every chatbot and reports how many rows changed.
func (s *PostgresStore) SetChatbotModel(ctx context.Context, model string) (int64, error) {
	tag, err := s.db.Exec(ctx, `UPDATE chatbots SET gemini_model = $1`, model)
	if err != nil {
		s.logPgError("SetChatbotModel", err)
		return 0, fmt.Errorf("database error updating chatbot models: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanChatbot(row pgx.Row) (*models.Chatbot, error) {
	var (
		b     models.Chatbot
		extra string
	)
	if err := row.Scan(&b.ID, &b.Username, &b.Name, &b.GeminiAPIKey, &b.GeminiModel, &b.ConnectorID, &extra); err != nil {
		return nil, err
	}
	b.ExtraConfig = []byte(extra)
	return &b, nil
}
