package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zapponejosh/cycle-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET  /health                 liveness
//	GET  /api/v1/phases          active phase table
//	POST /api/v1/predictions     next period estimate      (API key)
//	POST /api/v1/phase           phase on a date or today  (API key)
//	POST /api/v1/summary         both of the above         (API key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RealIP,
		RequestIDMiddleware(),
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/phases", handlers.ListPhases)

		// ======================================================================
		// Prediction routes (API key)
		// ======================================================================
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))

			r.Post("/predictions", handlers.Predict)
			r.Post("/phase", handlers.Phase)
			r.Post("/summary", handlers.Summary)
		})
	})

	return r
}
