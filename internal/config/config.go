package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort    string `env:"PORT" env-default:"5000"`
	Environment string `env:"ENVIRONMENT" env-default:"local"`

	// Record store
	StoreDriver  string `env:"STORE_DRIVER" env-default:"sqlite"`
	SQLitePath   string `env:"DB_FILE" env-default:"chatbots.db"`
	DatabaseURL  string `env:"DATABASE_URL"`
	HistoryLimit int    `env:"HISTORY_LIMIT" env-default:"500"`

	// EncryptionKeyHex seals connector configs at rest when set (64 hex characters).
	EncryptionKeyHex string `env:"CONNECTOR_ENCRYPTION_KEY"`
	EncryptionKey    []byte

	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"https://chatbot-frontend-hwuf.onrender.com" env-separator:","`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT" env-default:"10s"`

	DefaultModel  string `env:"GEMINI_DEFAULT_MODEL" env-default:"gemini-1.5-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error; real environment variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("DB_FILE must not be empty")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want sqlite or postgres)", c.StoreDriver)
	}

	if c.EncryptionKeyHex != "" {
		key, err := hex.DecodeString(c.EncryptionKeyHex)
		if err != nil {
			return fmt.Errorf("failed to decode CONNECTOR_ENCRYPTION_KEY from hex: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("CONNECTOR_ENCRYPTION_KEY must be 32 bytes (64 hex characters) long, got %d bytes", len(key))
		}
		c.EncryptionKey = key
	}

	if c.FetchTimeout <= 0 {
		return errors.New("FETCH_TIMEOUT must be positive")
	}
	if c.HistoryLimit <= 0 {
		return errors.New("HISTORY_LIMIT must be positive")
	}
	if c.DefaultModel == "" {
		return errors.New("GEMINI_DEFAULT_MODEL must not be empty")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT names production; it selects the JSON logger.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "prod", "production":
		return true
	}
	return false
}
