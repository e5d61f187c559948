package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Valuation/internal/config"
	"github.com/MikeSquared-Agency/Valuation/internal/hermes"
	"github.com/MikeSquared-Agency/Valuation/internal/report"
	"github.com/MikeSquared-Agency/Valuation/internal/store"
	"github.com/MikeSquared-Agency/Valuation/internal/valuation"
)

// Version is reported by the stats endpoint.
const Version = "2.0"

func NewRouter(e *valuation.Engine, s store.Store, reports *report.Service, h hermes.Client, cfg config.ServerConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", ClientIDHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(RateLimitMiddleware(cfg.RateLimitPerMinute))

	valuations := NewValuationsHandler(e, s, h, logger)
	explain := NewExplainHandler(s)
	docs := NewReportsHandler(reports, h, logger)
	catalog := NewCatalogHandler(e)
	stats := NewStatsHandler(s, e)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/technologies", catalog.Technologies)
		r.Get("/examples/audit-system", catalog.AuditSystemExample)

		r.Post("/valuations", valuations.Create)
		r.Get("/valuations", valuations.List)
		r.Get("/valuations/{id}", valuations.Get)
		r.Get("/valuations/{id}/explain", explain.Explain)
		r.Get("/valuations/{id}/report.md", docs.Markdown)
		r.Get("/valuations/{id}/report.pdf", docs.PDF)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Get("/stats", stats.Stats)
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
