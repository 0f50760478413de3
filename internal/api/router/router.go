package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pratik-mahalle/costpilot/internal/api/handlers"
	"github.com/pratik-mahalle/costpilot/internal/api/middleware"
	"github.com/pratik-mahalle/costpilot/internal/config"
	"github.com/pratik-mahalle/costpilot/internal/pkg/logger"
	"github.com/pratik-mahalle/costpilot/internal/pkg/metrics"
)

type Handlers struct {
	Health         *handlers.HealthHandler
	Analytics      *handlers.AnalyticsHandler
	Budget         *handlers.BudgetHandler
	Recommendation *handlers.RecommendationHandler
	Scenario       *handlers.ScenarioHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware)

	// Health checks and metrics
	r.Get("/health", h.Health.Healthz)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	// Forecasts
	r.Route("/api/v1/forecasts", func(r chi.Router) {
		r.Post("/", h.Analytics.Forecast)
	})

	// Trends
	r.Route("/api/v1/trends", func(r chi.Router) {
		r.Post("/", h.Analytics.Trend)
	})

	// Budgets
	r.Route("/api/v1/budgets", func(r chi.Router) {
		r.Get("/", h.Budget.List)
		r.Post("/", h.Budget.Create)
		r.Get("/{id}", h.Budget.Get)
		r.Post("/{id}/recompute", h.Budget.Recompute)
		r.Get("/{id}/alerts", h.Budget.ListAlerts)
		r.Put("/alerts/{alertID}/status", h.Budget.UpdateAlertStatus)
	})

	// Recommendations
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Get("/", h.Recommendation.List)
		r.Post("/generate", h.Recommendation.Generate)
		r.Get("/{id}", h.Recommendation.Get)
		r.Put("/{id}/status", h.Recommendation.Transition)
	})

	// Scenarios
	r.Route("/api/v1/scenarios", func(r chi.Router) {
		r.Get("/", h.Scenario.List)
		r.Post("/", h.Scenario.Run)
		r.Post("/compare", h.Scenario.Compare)
		r.Get("/{id}", h.Scenario.Get)
		r.Post("/{id}/cancel", h.Scenario.Cancel)
	})

	return r
}
