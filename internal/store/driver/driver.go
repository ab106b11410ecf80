// Package driver opens the store.Store selected by configuration.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"unifiedchat-backend/internal/config"
	"unifiedchat-backend/internal/store"
	"unifiedchat-backend/internal/store/postgres"
	"unifiedchat-backend/internal/store/sqlite"
)

const connectTimeout = 10 * time.Second

// Open connects to the configured store and creates its tables.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var s store.Store
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("unable to create database connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("unable to ping database: %w", err)
		}
		s = postgres.NewPostgresStore(pool, logger)
	case config.DriverSQLite:
		sq, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		s = sq
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if err := s.Init(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	logger.Info("store ready", zap.String("driver", cfg.StoreDriver))
	return s, nil
}
