package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"unifiedchat-backend/internal/api"
	"unifiedchat-backend/internal/config"
	"unifiedchat-backend/internal/crypto"
	"unifiedchat-backend/internal/handlers"
	"unifiedchat-backend/internal/llm"
	"unifiedchat-backend/internal/logger"
	"unifiedchat-backend/internal/metrics"
	"unifiedchat-backend/internal/services"
	"unifiedchat-backend/internal/sources"
	"unifiedchat-backend/internal/store/driver"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("FATAL: Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	zapLogger.Info("Starting Unified Chatbot backend",
		zap.String("environment", cfg.Environment),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Bool("config_sealing", len(cfg.EncryptionKey) > 0),
	)

	// 2. Open the record store
	st, err := driver.Open(context.Background(), cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	// 3. Initialize Dependencies (Sources, Services, Handlers)
	sealer, err := crypto.NewConfigSealer(cfg.EncryptionKey)
	if err != nil {
		zapLogger.Fatal("Failed to create config sealer", zap.Error(err))
	}
	registry, err := sources.NewDefaultRegistry(cfg.FetchTimeout)
	if err != nil {
		zapLogger.Fatal("Failed to build source registry", zap.Error(err))
	}
	m := metrics.New()
	generator := llm.NewGemini(cfg.GeminiBaseURL, zapLogger)

	connectorService := services.NewConnectorService(st, sealer, sources.DefaultCatalog, registry, m, zapLogger)
	chatbotService := services.NewChatbotService(st, cfg.DefaultModel, cfg.HistoryLimit, zapLogger)
	enricher := services.NewEnricher(connectorService, sources.DefaultCatalog, m, zapLogger)
	chatService := services.NewChatService(st, enricher, generator, cfg.DefaultModel, m, zapLogger)

	// 4. Setup Router & Inject Dependencies
	router := api.NewRouter(api.RouterDependencies{
		MetaHandler:      handlers.NewMetaHandler(sources.DefaultCatalog),
		ConnectorHandler: handlers.NewConnectorHandler(connectorService, zapLogger),
		ChatbotHandler:   handlers.NewChatbotHandlers(chatbotService, zapLogger),
		ChatHandler:      handlers.NewChatHandlers(chatService, zapLogger),
		AllowedOrigins:   cfg.AllowedOrigins,
		Gatherer:         m.Registry,
		Logger:           zapLogger.Named("http"),
	})

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Chat requests wait on a datasource fetch and a generation call.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zapLogger.Info("Server listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Could not listen", zap.String("port", cfg.HTTPPort), zap.Error(err))
		}
	}()

	<-stopChan
	zapLogger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server graceful shutdown failed", zap.Error(err))
		return
	}
	zapLogger.Info("Server shutdown complete.")
}
