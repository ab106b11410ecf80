package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/handlers"
)

// RouterDependencies holds all the dependencies required by the router setup.
type RouterDependencies struct {
	MetaHandler      *handlers.MetaHandler
	ConnectorHandler *handlers.ConnectorHandler
	ChatbotHandler   *handlers.ChatbotHandlers
	ChatHandler      *handlers.ChatHandlers

	AllowedOrigins []string
	// Gatherer backs GET /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/", deps.MetaHandler.HandleIndex)
	r.Get("/datasources", deps.MetaHandler.HandleDatasources)

	r.Post("/connect", deps.ConnectorHandler.HandleConnect)
	r.Get("/test_connection/{connector_id}", deps.ConnectorHandler.HandleTestConnection)

	r.Post("/chat", deps.ChatHandler.HandleChat)

	r.Post("/save_chatbot", deps.ChatbotHandler.SaveChatbot)
	r.Get("/list_chatbots/{username}", deps.ChatbotHandler.ListChatbots)
	r.Get("/get_chat_history/{chatbot_id}", deps.ChatbotHandler.GetChatHistory)
	r.Delete("/delete_chatbot/{chatbot_id}", deps.ChatbotHandler.DeleteChatbot)

	return r
}
