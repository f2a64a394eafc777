// Package server provides the HTTP server setup for the resume filter.
package server

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shahbaz-dev1/ai-resume-filter/internal/api"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/config"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/events"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/middleware"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/pipeline"
	"github.com/shahbaz-dev1/ai-resume-filter/internal/store"
)

// Server holds all dependencies for the resume filter HTTP server.
type Server struct {
	Router *chi.Mux
	Config *config.Config
	Logger *slog.Logger
}

// New creates a new Server with all routes configured. bus may be nil when
// no event broker is available.
func New(cfg *config.Config, p *pipeline.Pipeline, docs store.DocumentStore, activity store.ActivityStore, bus *events.Client, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.UserIdentity())

	// Publisher (may be nil if NATS not available)
	var publisher *events.Publisher
	if bus != nil {
		publisher = events.NewPublisher(bus, logger)
	}

	// Handlers
	healthHandler := api.NewHealthHandler(docs, bus)
	vectorHandler := api.NewVectorHandler(p, activity, publisher, logger)
	activityHandler := api.NewActivityHandler(activity)

	// Rate limiter for the vector endpoints (they each cost at least one
	// provider call)
	vectorRL := middleware.NewRateLimiter(cfg.VectorRateLimit, cfg.RateWindow)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/activity", activityHandler.Recent)

		r.Route("/vector", func(r chi.Router) {
			r.Use(vectorRL.Middleware)
			r.Post("/add", vectorHandler.Add)
			r.Post("/search", vectorHandler.Search)
			r.Post("/analyze", vectorHandler.Analyze)
		})
	})

	return &Server{
		Router: r,
		Config: cfg,
		Logger: logger,
	}
}
