// Package api wires the HTTP router, middleware and handlers of the
// transfers read API.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/scoracle-transfers/internal/api/handler"
	"github.com/albapepper/scoracle-transfers/internal/cache"
	"github.com/albapepper/scoracle-transfers/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool handler.Querier, appCache *cache.Cache, cfg *config.Config) *chi.Mux {
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

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI, served from the registered docs package. Not exposed in
	// production.
	if !cfg.IsProduction() {
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Leagues
		r.Get("/leagues", h.GetLeagues)
		r.Get("/leagues/{league}/seasons", h.GetLeagueSeasons)

		// Transfers
		r.Get("/transfers/{league}/{season}", h.GetTransfers)
		r.Get("/transfers/{league}/{season}/clubs", h.GetClubSummaries)
	})

	return r
}
