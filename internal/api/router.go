package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/malothro-m/koshi-glof-ahp/internal/config"
	"github.com/malothro-m/koshi-glof-ahp/internal/events"
	"github.com/malothro-m/koshi-glof-ahp/internal/store"
)

func NewRouter(s store.Store, ev events.Client, cfg *config.Config, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	lakes := NewLakesHandler(s, ev)
	runs := NewRunsHandler(s, ev, cfg, logger)
	weights := NewWeightsHandler(cfg)
	admin := NewAdminHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ClientIDMiddleware)

		r.Post("/lakes", lakes.Create)
		r.Get("/lakes", lakes.List)
		r.Get("/lakes/{id}", lakes.Get)
		r.Patch("/lakes/{id}", lakes.Update)

		r.Post("/runs", runs.Create)
		r.Get("/runs", runs.List)
		r.Get("/runs/{id}", runs.Get)
		r.Get("/runs/{id}/results", runs.Results)
		r.Get("/runs/{id}/weights", runs.Weights)

		r.Get("/weights", weights.Get)
		r.Post("/weights/preview", weights.Preview)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/stats", admin.Stats)
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
