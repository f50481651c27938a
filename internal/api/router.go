// Package api exposes the ranking pipeline over HTTP: single-post analysis,
// full ranking runs, persisted run history, weight presets, and the static
// catalogs of scenarios, filters, and scorers.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/featherlab/rankline/internal/config"
	"github.com/featherlab/rankline/internal/events"
	"github.com/featherlab/rankline/internal/store"
)

func NewRouter(s store.Store, e events.Client, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	analyze := NewAnalyzeHandler(e, cfg)
	rank := NewRankHandler(s, e, cfg, logger)
	runs := NewRunsHandler(s)
	presets := NewPresetsHandler(s, e)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", analyze.Analyze)
		r.Post("/rank", rank.Rank)

		r.Get("/scenarios", getScenarios)
		r.Get("/filters", getFilters)
		r.Get("/scorers", getScorers)
		r.Get("/weights/default", getDefaultWeights)

		// Persistence-backed routes; 503 when no store is configured.
		r.Group(func(r chi.Router) {
			r.Use(RequireStore(s))

			r.Get("/runs", runs.List)
			r.Get("/runs/{id}", runs.Get)

			r.Get("/presets", presets.List)
			r.Get("/presets/{id}", presets.Get)
			r.Post("/presets", presets.Create)
			r.Put("/presets/{id}", presets.Update)

			r.Group(func(r chi.Router) {
				r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
				r.Delete("/runs/{id}", runs.Delete)
				r.Delete("/presets/{id}", presets.Delete)
			})
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
