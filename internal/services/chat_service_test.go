package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/metrics"
	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/sources"
)

type chatFixture struct {
	svc   *ChatService
	store *memStore
	stubs map[sources.Kind]*stubSource
	gen   *stubGenerator
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	connectors, st, stubs := newConnectorService(t, nil)
	m := metrics.New()
	enricher := NewEnricher(connectors, sources.DefaultCatalog, m, zap.NewNop())
	gen := &stubGenerator{reply: "Sure, here you go."}
	return &chatFixture{
		svc:   NewChatService(st, enricher, gen, testDefaultModel, m, zap.NewNop()),
		store: st,
		stubs: stubs,
		gen:   gen,
	}
}

func strPtr(s string) *string { return &s }

func TestChat_Validation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.Chat(ctx, models.ChatRequest{Message: strPtr("hi")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Chat(ctx, models.ChatRequest{ChatbotID: "b1"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Chat(ctx, models.ChatRequest{ChatbotID: "missing", Message: strPtr("hi")})
	assert.ErrorIs(t, err, ErrChatbotNotFound)

	assert.Empty(t, f.store.messages)
	assert.Empty(t, f.gen.calls)
}

func TestChat_EnrichesAndPersistsBothTurns(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	f.store.chatbots["b1"] = models.Chatbot{ID: "b1", GeminiAPIKey: "key", GeminiModel: "gemini-2.0-flash", ConnectorID: "c1"}
	addConnector(f.store, "c1", sources.KindFreshdesk, "tickets")
	f.stubs[sources.KindFreshdesk].result = sources.Result{Data: json.RawMessage(`[{"id":1}]`)}

	resp, err := f.svc.Chat(ctx, models.ChatRequest{ChatbotID: "b1", Message: strPtr("any open tickets?")})
	require.NoError(t, err)
	assert.Equal(t, "Sure, here you go.", resp.Reply)

	require.Len(t, f.gen.calls, 1)
	assert.Equal(t, generateCall{
		APIKey: "key",
		Model:  "gemini-2.0-flash",
		Prompt: "any open tickets?\n\nReference Data from Freshdesk (tickets):\nid: 1",
	}, f.gen.calls[0])

	history, err := f.store.GetMessages(ctx, "b1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "any open tickets?", history[0].Message, "the raw message is stored, not the enriched one")
	assert.Equal(t, models.RoleBot, history[1].Role)
	assert.Equal(t, "Sure, here you go.", history[1].Message)
}

func TestChat_FetchErrorStillReplies(t *testing.T) {
	f := newChatFixture(t)
	f.store.chatbots["b1"] = models.Chatbot{ID: "b1", GeminiAPIKey: "key", GeminiModel: "m", ConnectorID: "c1"}
	addConnector(f.store, "c1", sources.KindZoho, "sheet")
	f.stubs[sources.KindZoho].result = sources.Failed("Zoho sheet access not implemented; use google_sheets datasource for Google Sheets")

	resp, err := f.svc.Chat(context.Background(), models.ChatRequest{ChatbotID: "b1", Message: strPtr("hello")})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Reply)
	assert.Contains(t, f.gen.calls[0].Prompt, "(Zoho fetch error: Zoho sheet access not implemented")
	assert.Len(t, f.store.messages, 2)
}

func TestChat_GenerationErrorBecomesReply(t *testing.T) {
	f := newChatFixture(t)
	f.gen.err = errors.New("API key not valid")
	f.store.chatbots["b1"] = models.Chatbot{ID: "b1", GeminiAPIKey: "bad"}

	resp, err := f.svc.Chat(context.Background(), models.ChatRequest{ChatbotID: "b1", Message: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Gemini API error: API key not valid", resp.Reply)
	assert.Equal(t, testDefaultModel, f.gen.calls[0].Model, "an empty stored model falls back to the default")

	require.Len(t, f.store.messages, 2)
	assert.Equal(t, "", f.store.messages[0].Message)
	assert.Equal(t, resp.Reply, f.store.messages[1].Message)
}

func TestChat_StoreFailure(t *testing.T) {
	f := newChatFixture(t)
	f.store.failWith = errStoreDown

	_, err := f.svc.Chat(context.Background(), models.ChatRequest{ChatbotID: "b1", Message: strPtr("hi")})
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrChatbotNotFound)
}
