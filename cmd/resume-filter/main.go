// Package main is the entry point for the resume filter service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shahbaz-dev1/ai-resume-filter/internal/config"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/embeddings"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/events"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/pipeline"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/server"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Logger. The level is settable because config is not loaded yet.
	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logLevel.Set(cfg.SlogLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Vector store, opened once for the process lifetime
	docs, activity, err := store.Open(ctx, store.Config{
		Driver:      cfg.StoreDriver,
		Path:        cfg.StorePath,
		DatabaseURL: cfg.DatabaseURL,
		Dimensions:  cfg.Dimensions,
	})
	if err != nil {
		logger.Error("failed to open vector store", "error", err)
		os.Exit(1)
	}
	defer docs.Close()
	logger.Info("vector store ready", "driver", cfg.StoreDriver, "dimensions", cfg.Dimensions)

	// Embedding providers. Providers whose credentials are absent are not
	// registered; calls selecting them fail with a configuration error
	// while the rest keep working.
	registry := embeddings.NewRegistry(cfg.DefaultProvider)
	if cfg.OpenAIAPIKey != "" {
		registry.Register(embeddings.KindOpenAI, embeddings.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, ""))
	}
	if cfg.GeminiAPIKey != "" {
		registry.Register(embeddings.KindGemini, embeddings.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	registry.Register(embeddings.KindSimple, embeddings.NewSimpleProvider(cfg.Dimensions))
	logger.Info("embedding providers initialized",
		"default", string(cfg.DefaultProvider),
		"openai", registry.Configured(embeddings.KindOpenAI),
		"gemini", registry.Configured(embeddings.KindGemini),
	)

	// Event bus is optional; the service works without it
	var bus *events.Client
	if cfg.NatsURL != "" {
		bus, err = events.NewClient(cfg.NatsURL, logger)
		if err != nil {
			logger.Warn("failed to connect to NATS, running without event bus", "error", err)
			bus = nil
		} else {
			defer bus.Close()
			logger.Info("connected to NATS", "url", cfg.NatsURL)
		}
	}

	// Pipeline
	pipe := pipeline.New(registry, docs, cfg.Dimensions, cfg.PersistAnalyses, logger)

	// Server
	srv := server.New(cfg, pipe, docs, activity, bus, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down gracefully...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("resume filter starting", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("resume filter stopped")
}
