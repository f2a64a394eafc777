// Package config provides environment-based configuration for the resume
// filter service.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shahbaz-dev1/ai-resume-filter/internal/embeddings"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Embeddings
	DefaultProvider embeddings.Kind
	Dimensions      int
	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string

	// Vector store
	StoreDriver string // "sqlite", "postgres" or "memory"
	StorePath   string
	DatabaseURL string

	// Analysis
	PersistAnalyses bool

	// NATS (optional event bus)
	NatsURL string

	// Rate limiting
	VectorRateLimit int
	RateWindow      time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() (*Config, error) {
	c := &Config{
		Port:            envInt("PORT", 8600),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		Dimensions:      envInt("EMBEDDING_DIMENSIONS", 1536),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		GeminiAPIKey:    envStr("GEMINI_API_KEY", ""),
		GeminiModel:     envStr("GEMINI_EMBEDDING_MODEL", "embedding-001"),
		StoreDriver:     envStr("STORE_DRIVER", "sqlite"),
		StorePath:       envStr("STORE_PATH", "data/vectors.db"),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		PersistAnalyses: envBool("PERSIST_ANALYSES", false),
		NatsURL:         envStr("NATS_URL", ""),
		VectorRateLimit: envInt("VECTOR_RATE_LIMIT", 60),
		RateWindow:      time.Minute,
	}

	provider, err := embeddings.ParseKind(envStr("EMBEDDING_PROVIDER", "gemini"))
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_PROVIDER: %w", err)
	}
	c.DefaultProvider = provider

	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.Dimensions)
	}
	if c.StoreDriver == "postgres" && c.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres store driver")
	}

	return c, nil
}

// SlogLevel maps the configured log level onto slog's levels. Unknown
// values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
