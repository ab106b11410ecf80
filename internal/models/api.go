package models

import (
	"encoding/json"
	"time"
)

// --- Generic API Responses ---

// ErrorResponse defines the standard JSON error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the acknowledgement returned by the save endpoints.
type MessageResponse struct {
	Message     string `json:"message"`
	ConnectorID string `json:"connector_id,omitempty"`
	ChatbotID   string `json:"chatbot_id,omitempty"`
}

// IndexResponse is the service banner served at GET /.
type IndexResponse struct {
	Message     string   `json:"message"`
	Datasources []string `json:"datasources"`
}

// DatasourceInfo describes one datasource kind in GET /datasources.
type DatasourceInfo struct {
	Label       string   `json:"label"`
	Subproducts []string `json:"subproducts"`
}

// --- Connectors ---

// ConnectRequest defines the payload for POST /connect.
type ConnectRequest struct {
	ConnectorID string          `json:"connector_id"`
	Username    string          `json:"username"`
	Datasource  string          `json:"datasource"`
	Subproduct  string          `json:"subproduct"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// --- Chatbots ---

// SaveChatbotRequest defines the payload for POST /save_chatbot.
type SaveChatbotRequest struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	ChatbotName  string          `json:"chatbot_name"`
	GeminiAPIKey string          `json:"gemini_api_key"`
	GeminiModel  *string         `json:"gemini_model,omitempty"` // Defaults to the configured model when omitted
	ConnectorID  string          `json:"connector_id"`
	ExtraConfig  json.RawMessage `json:"extra_config,omitempty"`
}

// ChatbotSummary is one entry of GET /list_chatbots/{username}.
type ChatbotSummary struct {
	ID          string `json:"id"`
	ChatbotName string `json:"chatbot_name"`
	ConnectorID string `json:"connector_id"`
}

// HistoryEntry is one entry of GET /get_chat_history/{chatbot_id}.
type HistoryEntry struct {
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Chat ---

// ChatRequest defines the payload for POST /chat.
// Message is a pointer so an empty string can be told apart from an absent field.
type ChatRequest struct {
	ChatbotID string  `json:"chatbot_id"`
	Message   *string `json:"message"`
}

// ChatResponse carries the generated reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}
