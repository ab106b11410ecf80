// Package sqlite is the embedded, single-file implementation of store.Store.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/store"
)

var _ store.Store = (*SQLiteStore)(nil)

type connectorRow struct {
	ID         string `gorm:"column:id;primaryKey"`
	Username   string `gorm:"column:username"`
	Datasource string `gorm:"column:datasource"`
	Subproduct string `gorm:"column:subproduct"`
	ConfigJSON string `gorm:"column:config_json"`
}

func (connectorRow) TableName() string { return "connectors" }

type chatbotRow struct {
	ID           string `gorm:"column:id;primaryKey"`
	Username     string `gorm:"column:username;index"`
	ChatbotName  string `gorm:"column:chatbot_name"`
	GeminiAPIKey string `gorm:"column:gemini_api_key"`
	GeminiModel  string `gorm:"column:gemini_model"`
	ConnectorID  string `gorm:"column:connector_id"`
	ExtraConfig  string `gorm:"column:extra_config"`
}

func (chatbotRow) TableName() string { return "chatbots" }

type userRow struct {
	Username string `gorm:"column:username;primaryKey"`
	Password string `gorm:"column:password"`
}

func (userRow) TableName() string { return "users" }

type chatHistoryRow struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ChatbotID string    `gorm:"column:chatbot_id;index"`
	Role      string    `gorm:"column:role"`
	Message   string    `gorm:"column:message"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (chatHistoryRow) TableName() string { return "chat_history" }

type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (or creates) the database file at path.
func Open(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// SQLite allows a single writer; serialize access instead of surfacing "database is locked".
	sqlDB.SetMaxOpenConns(1)
	return New(db, logger), nil
}

func New(db *gorm.DB, logger *zap.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger.Named("sqlite_store")}
}

// Init creates the four tables if they are absent.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&connectorRow{}, &chatbotRow{}, &userRow{}, &chatHistoryRow{}); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- Connectors ---

func (s *SQLiteStore) UpsertConnector(ctx context.Context, c models.Connector) error {
	row := connectorRow{
		ID:         c.ID,
		Username:   c.Username,
		Datasource: c.Datasource,
		Subproduct: c.Subproduct,
		ConfigJSON: string(c.Config),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		s.logger.Error("UpsertConnector failed", zap.String("connector_id", c.ID), zap.Error(err))
		return fmt.Errorf("database error saving connector: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetConnector(ctx context.Context, id string) (*models.Connector, error) {
	var row connectorRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching connector: %w", err)
	}
	return &models.Connector{
		ID:         row.ID,
		Username:   row.Username,
		Datasource: row.Datasource,
		Subproduct: row.Subproduct,
		Config:     []byte(row.ConfigJSON),
	}, nil
}

// --- Chatbots ---

func (s *SQLiteStore) UpsertChatbot(ctx context.Context, b models.Chatbot) error {
	row := chatbotRow{
		ID:           b.ID,
		Username:     b.Username,
		ChatbotName:  b.Name,
		GeminiAPIKey: b.GeminiAPIKey,
		GeminiModel:  b.GeminiModel,
		ConnectorID:  b.ConnectorID,
		ExtraConfig:  string(b.ExtraConfig),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		s.logger.Error("UpsertChatbot failed", zap.String("chatbot_id", b.ID), zap.Error(err))
		return fmt.Errorf("database error saving chatbot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListChatbots(ctx context.Context, username string) ([]models.Chatbot, error) {
	var rows []chatbotRow
	if err := s.db.WithContext(ctx).Where("username = ?", username).Order("rowid").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database error listing chatbots: %w", err)
	}
	out := make([]models.Chatbot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (s *SQLiteStore) GetChatbot(ctx context.Context, id string) (*models.Chatbot, error) {
	var row chatbotRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching chatbot: %w", err)
	}
	b := row.toModel()
	return &b, nil
}

// DeleteChatbot removes the chatbot and its history in one transaction.
func (s *SQLiteStore) DeleteChatbot(ctx context.Context, id string) error {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(&chatbotRow{}).Error; err != nil {
			return fmt.Errorf("database error deleting chatbot: %w", err)
		}
		res := tx.Where("chatbot_id = ?", id).Delete(&chatHistoryRow{})
		if res.Error != nil {
			return fmt.Errorf("database error deleting chat history: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		s.logger.Error("DeleteChatbot failed", zap.String("chatbot_id", id), zap.Error(err))
		return err
	}
	s.logger.Debug("chatbot deleted", zap.String("chatbot_id", id), zap.Int64("messages_deleted", deleted))
	return nil
}

func (s *SQLiteStore) SetChatbotModel(ctx context.Context, model string) (int64, error) {
	res := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&chatbotRow{}).
		Update("gemini_model", model)
	if res.Error != nil {
		return 0, fmt.Errorf("database error updating chatbot models: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r chatbotRow) toModel() models.Chatbot {
	return models.Chatbot{
		ID:           r.ID,
		Username:     r.Username,
		Name:         r.ChatbotName,
		GeminiAPIKey: r.GeminiAPIKey,
		GeminiModel:  r.GeminiModel,
		ConnectorID:  r.ConnectorID,
		ExtraConfig:  []byte(r.ExtraConfig),
	}
}

// --- Chat history ---

func (s *SQLiteStore) AppendMessage(ctx context.Context, chatbotID string, role models.Role, text string) (*models.ChatMessage, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidRole, role)
	}
	row := chatHistoryRow{
		ChatbotID: chatbotID,
		Role:      string(role),
		Message:   text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.logger.Error("AppendMessage failed", zap.String("chatbot_id", chatbotID), zap.Error(err))
		return nil, fmt.Errorf("database error appending message: %w", err)
	}
	return row.toModel(), nil
}

func (s *SQLiteStore) GetMessages(ctx context.Context, chatbotID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	var rows []chatHistoryRow
	err := s.db.WithContext(ctx).
		Where("chatbot_id = ?", chatbotID).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("database error fetching chat history: %w", err)
	}
	out := make([]models.ChatMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toModel())
	}
	return out, nil
}

func (r chatHistoryRow) toModel() *models.ChatMessage {
	return &models.ChatMessage{
		ID:        r.ID,
		ChatbotID: r.ChatbotID,
		Role:      models.Role(r.Role),
		Message:   r.Message,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

// --- Users ---

func (s *SQLiteStore) UpsertUser(ctx context.Context, u models.User) error {
	row := userRow{Username: u.Username, Password: u.HashedPassword}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("database error saving user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("username = ?", username).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &models.User{Username: row.Username, HashedPassword: row.Password}, nil
}
