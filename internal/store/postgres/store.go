package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/store"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStore(db *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger.Named("postgres_store")}
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS connectors (
    id TEXT PRIMARY KEY,
    username TEXT,
    datasource TEXT,
    subproduct TEXT,
    config_json TEXT
)`,
	`CREATE TABLE IF NOT EXISTS chatbots (
    id TEXT PRIMARY KEY,
    username TEXT,
    chatbot_name TEXT,
    gemini_api_key TEXT,
    gemini_model TEXT,
    connector_id TEXT,
    extra_config TEXT
)`,
	`CREATE TABLE IF NOT EXISTS users (
    username TEXT PRIMARY KEY,
    password TEXT
)`,
	`CREATE TABLE IF NOT EXISTS chat_history (
    id BIGSERIAL PRIMARY KEY,
    chatbot_id TEXT,
    role TEXT,
    message TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS chat_history_chatbot_id_idx ON chat_history (chatbot_id, id)`,
}

// Init creates the tables if they do not exist yet.
func (s *PostgresStore) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			s.logPgError("Init", err)
			return fmt.Errorf("database error creating schema: %w", err)
		}
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// --- User Methods ---

const upsertUser = `-- name: UpsertUser :exec
INSERT INTO users (username, password)
VALUES ($1, $2)
ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password;
`

func (s *PostgresStore) UpsertUser(ctx context.Context, u models.User) error {
	if _, err := s.db.Exec(ctx, upsertUser, u.Username, u.HashedPassword); err != nil {
		s.logPgError("UpsertUser", err)
		return fmt.Errorf("database error saving user: %w", err)
	}
	return nil
}

const getUser = `-- name: GetUser :one
SELECT username, COALESCE(password, '') FROM users WHERE username = $1;
`

func (s *PostgresStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx, getUser, username).Scan(&u.Username, &u.HashedPassword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &u, nil
}

// logPgError logs the PostgreSQL error code and detail when available.
func (s *PostgresStore) logPgError(op string, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		s.logger.Error("postgres error",
			zap.String("op", op),
			zap.String("code", pgErr.Code),
			zap.String("message", pgErr.Message),
			zap.String("detail", pgErr.Detail))
		return
	}
	s.logger.Error("database call failed", zap.String("op", op), zap.Error(err))
}
