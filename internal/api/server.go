// Package api assembles the chi router serving stored run bundles.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/shrutikmk/startgg-match-insights/internal/api/handler"
	"github.com/shrutikmk/startgg-match-insights/internal/cache"
	"github.com/shrutikmk/startgg-match-insights/internal/config"
	"github.com/shrutikmk/startgg-match-insights/internal/db"
)

// NewRouter creates and configures the chi router with all middleware and
// routes.
func NewRouter(pool *db.Pool, appCache *cache.Cache, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, appCache, cfg)

	// --- Routes ---
	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/runs/latest", h.GetLatestRun)
		r.Get("/runs/{runID}", h.GetRun)

		// Latest-run sections
		r.Get("/metadata", h.GetMetadata)
		r.Get("/events", h.GetEvents)
		r.Get("/players", h.GetPlayers)
		r.Get("/ratings", h.GetRatings)
	})

	return r
}
