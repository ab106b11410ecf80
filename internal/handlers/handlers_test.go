package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/services"
	"unifiedchat-backend/internal/sources"
)

// serve routes one request through a chi router so URL params resolve.
func serve(method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMetaHandler(t *testing.T) {
	h := NewMetaHandler(sources.DefaultCatalog)

	rec := serve(http.MethodGet, "/", "/", "", h.HandleIndex)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Unified Chatbot backend running","datasources":["zoho","hubspot","freshdesk","google_sheets","odoo"]}`, rec.Body.String())

	rec = serve(http.MethodGet, "/datasources", "/datasources", "", h.HandleDatasources)
	assert.Equal(t, http.StatusOK, rec.Code)
	var got map[string]models.DatasourceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 5)
	assert.Equal(t, models.DatasourceInfo{Label: "Odoo", Subproducts: []string{"crm", "sales", "inventory", "todo"}}, got["odoo"])
}

func TestConnectorHandler_Connect(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"saved", `{"connector_id":"c1","username":"alice","datasource":"freshdesk","subproduct":"tickets","config":{"domain":"acme","api_key":"k"}}`, nil, http.StatusOK, `{"message":"Connector saved","connector_id":"c1"}`},
		{"missing", `{"connector_id":"c1"}`, services.ErrMissingFields, http.StatusBadRequest, `{"error":"Missing required fields"}`},
		{"unknown datasource", `{}`, fmt.Errorf("%w: %q", services.ErrUnknownDatasource, "x"), http.StatusBadRequest, `{"error":"Unknown datasource"}`},
		{"bad subproduct", `{}`, services.ErrUnsupportedSubproduct, http.StatusBadRequest, `{"error":"Unsupported subproduct for datasource"}`},
		{"store down", `{}`, errors.New("disk full"), http.StatusInternalServerError, `{"error":"Failed to save connector"}`},
		{"invalid json", `{`, nil, http.StatusBadRequest, `{"error":"Invalid request payload"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockConnectorService{connectFn: func(_ context.Context, req models.ConnectRequest) (*models.Connector, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				assert.JSONEq(t, `{"domain":"acme","api_key":"k"}`, string(req.Config))
				return &models.Connector{ID: req.ConnectorID}, nil
			}}
			h := NewConnectorHandler(svc, zap.NewNop())

			rec := serve(http.MethodPost, "/connect", "/connect", tt.body, h.HandleConnect)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestConnectorHandler_TestConnection(t *testing.T) {
	svc := &mockConnectorService{testFn: func(_ context.Context, id string) (sources.Result, error) {
		switch id {
		case "c1":
			return sources.Result{Data: json.RawMessage(`[{"id":1}]`)}, nil
		case "c2":
			return sources.Failed("Missing domain or api_key in Freshdesk config"), nil
		default:
			return sources.Result{}, services.ErrConnectorNotFound
		}
	}}
	h := NewConnectorHandler(svc, zap.NewNop())
	const pattern = "/test_connection/{connector_id}"

	rec := serve(http.MethodGet, pattern, "/test_connection/c1", "", h.HandleTestConnection)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1}]`, rec.Body.String())

	rec = serve(http.MethodGet, pattern, "/test_connection/c2", "", h.HandleTestConnection)
	assert.Equal(t, http.StatusOK, rec.Code, "fetch errors are data")
	assert.JSONEq(t, `{"error":"Missing domain or api_key in Freshdesk config"}`, rec.Body.String())

	rec = serve(http.MethodGet, pattern, "/test_connection/nope", "", h.HandleTestConnection)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Connector not found"}`, rec.Body.String())
}

func TestChatbotHandlers_Save(t *testing.T) {
	var saved models.SaveChatbotRequest
	svc := &mockChatbotService{saveFn: func(_ context.Context, req models.SaveChatbotRequest) (*models.Chatbot, error) {
		if req.ID == "" {
			return nil, services.ErrMissingFields
		}
		saved = req
		return &models.Chatbot{ID: req.ID}, nil
	}}
	h := NewChatbotHandlers(svc, zap.NewNop())

	rec := serve(http.MethodPost, "/save_chatbot", "/save_chatbot",
		`{"id":"b1","username":"alice","chatbot_name":"Support","gemini_api_key":"k","connector_id":"c1","extra_config":{"tone":"formal"}}`,
		h.SaveChatbot)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Chatbot saved","chatbot_id":"b1"}`, rec.Body.String())
	assert.Nil(t, saved.GeminiModel, "an omitted model reaches the service as nil")
	assert.JSONEq(t, `{"tone":"formal"}`, string(saved.ExtraConfig))

	rec = serve(http.MethodPost, "/save_chatbot", "/save_chatbot", `{"username":"alice"}`, h.SaveChatbot)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())
}

func TestChatbotHandlers_ListAndHistory(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockChatbotService{
		listFn: func(_ context.Context, username string) ([]models.ChatbotSummary, error) {
			if username == "alice" {
				return []models.ChatbotSummary{{ID: "b1", ChatbotName: "Support", ConnectorID: "c1"}}, nil
			}
			return nil, nil
		},
		historyFn: func(_ context.Context, chatbotID string) ([]models.HistoryEntry, error) {
			if chatbotID == "b1" {
				return []models.HistoryEntry{
					{Role: models.RoleUser, Message: "hi", CreatedAt: created},
					{Role: models.RoleBot, Message: "hello", CreatedAt: created},
				}, nil
			}
			return nil, nil
		},
	}
	h := NewChatbotHandlers(svc, zap.NewNop())

	rec := serve(http.MethodGet, "/list_chatbots/{username}", "/list_chatbots/alice", "", h.ListChatbots)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"b1","chatbot_name":"Support","connector_id":"c1"}]`, rec.Body.String())

	rec = serve(http.MethodGet, "/list_chatbots/{username}", "/list_chatbots/nobody", "", h.ListChatbots)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(http.MethodGet, "/get_chat_history/{chatbot_id}", "/get_chat_history/b1", "", h.GetChatHistory)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"role":"user","message":"hi","created_at":"2024-05-01T12:00:00Z"},
		{"role":"bot","message":"hello","created_at":"2024-05-01T12:00:00Z"}
	]`, rec.Body.String())

	rec = serve(http.MethodGet, "/get_chat_history/{chatbot_id}", "/get_chat_history/none", "", h.GetChatHistory)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestChatbotHandlers_Delete(t *testing.T) {
	var deleted []string
	svc := &mockChatbotService{deleteFn: func(_ context.Context, id string) error {
		deleted = append(deleted, id)
		return nil
	}}
	h := NewChatbotHandlers(svc, zap.NewNop())

	for i := 0; i < 2; i++ {
		rec := serve(http.MethodDelete, "/delete_chatbot/{chatbot_id}", "/delete_chatbot/b1", "", h.DeleteChatbot)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Chatbot and history deleted"}`, rec.Body.String())
	}
	assert.Equal(t, []string{"b1", "b1"}, deleted)
}

func TestChatHandlers_Chat(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		reply      string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"reply", `{"chatbot_id":"b1","message":"hi"}`, "hello", nil, http.StatusOK, `{"reply":"hello"}`},
		{"generation error is a reply", `{"chatbot_id":"b1","message":"hi"}`, "Gemini API error: quota", nil, http.StatusOK, `{"reply":"Gemini API error: quota"}`},
		{"missing", `{"chatbot_id":"b1"}`, "", services.ErrMissingFields, http.StatusBadRequest, `{"error":"Missing chatbot_id or message"}`},
		{"unknown chatbot", `{"chatbot_id":"x","message":"hi"}`, "", services.ErrChatbotNotFound, http.StatusNotFound, `{"error":"Chatbot not found"}`},
		{"store down", `{"chatbot_id":"b1","message":"hi"}`, "", errors.New("locked"), http.StatusInternalServerError, `{"error":"Failed to process chat message"}`},
		{"no body", ``, "", nil, http.StatusBadRequest, `{"error":"Missing chatbot_id or message"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockChatService{chatFn: func(_ context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &models.ChatResponse{Reply: tt.reply}, nil
			}}
			h := NewChatHandlers(svc, zap.NewNop())

			rec := serve(http.MethodPost, "/chat", "/chat", tt.body, h.HandleChat)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
