package models

import (
	"encoding/json"
	"time"
)

// Connector is a stored credential + target bundle for one datasource and one of its subproducts.
type Connector struct {
	ID         string          `db:"id"`
	Username   string          `db:"username"`
	Datasource string          `db:"datasource"`
	Subproduct string          `db:"subproduct"`
	Config     json.RawMessage `db:"config_json"` // Plain config object, or {"encrypted": "..."} when sealed
}

// Chatbot binds a Gemini key/model to at most one Connector.
type Chatbot struct {
	ID           string          `db:"id"`
	Username     string          `db:"username"`
	Name         string          `db:"chatbot_name"`
	GeminiAPIKey string          `db:"gemini_api_key"`
	GeminiModel  string          `db:"gemini_model"`
	ConnectorID  string          `db:"connector_id"` // Not enforced by a foreign key
	ExtraConfig  json.RawMessage `db:"extra_config"`
}

// User is a placeholder entity. No HTTP route reads it; chatctl add-user writes it.
type User struct {
	Username       string `db:"username"`
	HashedPassword string `db:"password"`
}

// ChatMessage is one turn of a chatbot conversation.
type ChatMessage struct {
	ID        int64     `db:"id"`
	ChatbotID string    `db:"chatbot_id"`
	Role      Role      `db:"role"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}
