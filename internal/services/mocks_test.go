package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/sources"
	"unifiedchat-backend/internal/store"
)

// memStore is an in-memory store.Store for service tests.
type memStore struct {
	mu         sync.Mutex
	connectors map[string]models.Connector
	chatbots   map[string]models.Chatbot
	order      []string
	users      map[string]models.User
	messages   []models.ChatMessage
	nextID     int64
	writes     int
	failWith   error
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		connectors: map[string]models.Connector{},
		chatbots:   map[string]models.Chatbot{},
		users:      map[string]models.User{},
	}
}

func (m *memStore) Init(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func (m *memStore) UpsertConnector(_ context.Context, c models.Connector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.writes++
	m.connectors[c.ID] = c
	return nil
}

func (m *memStore) GetConnector(_ context.Context, id string) (*models.Connector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.connectors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) UpsertChatbot(_ context.Context, b models.Chatbot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.writes++
	if _, exists := m.chatbots[b.ID]; !exists {
		m.order = append(m.order, b.ID)
	}
	m.chatbots[b.ID] = b
	return nil
}

func (m *memStore) ListChatbots(_ context.Context, username string) ([]models.Chatbot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Chatbot
	for _, id := range m.order {
		if b, ok := m.chatbots[id]; ok && b.Username == username {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) GetChatbot(_ context.Context, id string) (*models.Chatbot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	b, ok := m.chatbots[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) DeleteChatbot(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chatbots, id)
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.ChatbotID != id {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}

func (m *memStore) SetChatbotModel(_ context.Context, model string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, b := range m.chatbots {
		b.GeminiModel = model
		m.chatbots[id] = b
	}
	return int64(len(m.chatbots)), nil
}

func (m *memStore) AppendMessage(_ context.Context, chatbotID string, role models.Role, text string) (*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg := models.ChatMessage{ID: m.nextID, ChatbotID: chatbotID, Role: role, Message: text, CreatedAt: time.Now().UTC()}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *memStore) GetMessages(_ context.Context, chatbotID string, limit int) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	var out []models.ChatMessage
	for _, msg := range m.messages {
		if msg.ChatbotID == chatbotID && len(out) < limit {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpsertUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Username] = u
	return nil
}

func (m *memStore) GetUser(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

// fetchCall records one Fetch on a stubSource.
type fetchCall struct {
	Config     json.RawMessage
	Subproduct string
}

// stubSource returns a canned result and renders records like the real source of its kind.
type stubSource struct {
	real   sources.Source
	result sources.Result
	calls  []fetchCall
}

func (s *stubSource) Kind() sources.Kind { return s.real.Kind() }

func (s *stubSource) Fetch(_ context.Context, config json.RawMessage, subproduct string) sources.Result {
	s.calls = append(s.calls, fetchCall{Config: config, Subproduct: subproduct})
	return s.result
}

func (s *stubSource) Records(data json.RawMessage) ([]sources.Record, bool) {
	return s.real.Records(data)
}

// newStubRegistry registers a stub for every catalog kind.
func newStubRegistry(t *testing.T) (*sources.Registry, map[sources.Kind]*stubSource) {
	t.Helper()
	stubs := map[sources.Kind]*stubSource{
		sources.KindZoho:         {real: sources.NewZoho(nil)},
		sources.KindHubSpot:      {real: sources.NewHubSpot(nil)},
		sources.KindFreshdesk:    {real: sources.NewFreshdesk(nil)},
		sources.KindGoogleSheets: {real: sources.NewGoogleSheets(nil)},
		sources.KindOdoo:         {real: sources.NewOdoo(nil)},
	}
	list := make([]sources.Source, 0, len(stubs))
	for _, k := range sources.AllKinds {
		list = append(list, stubs[k])
	}
	reg, err := sources.NewRegistry(sources.DefaultCatalog, list...)
	require.NoError(t, err)
	return reg, stubs
}

// stubGenerator records prompts and returns a fixed reply or error.
type stubGenerator struct {
	reply string
	err   error
	calls []generateCall
}

type generateCall struct {
	APIKey, Model, Prompt string
}

func (g *stubGenerator) Generate(_ context.Context, apiKey, model, prompt string) (string, error) {
	g.calls = append(g.calls, generateCall{APIKey: apiKey, Model: model, Prompt: prompt})
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

var errStoreDown = errors.New("store unavailable")
