package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/set-night/surveypay/internal/service"
)

// HealthFunc reports whether the backing stores are reachable.
type HealthFunc func(ctx context.Context) error

// NewRouter creates the chi router with all API routes mounted.
func NewRouter(
	plans *service.PlanCatalog,
	progress *service.ProgressService,
	upgrades *service.UpgradeService,
	health HealthFunc,
	adminToken string,
) http.Handler {
	h := &Handlers{
		plans:    plans,
		progress: progress,
		upgrades: upgrades,
		health:   health,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		// Plans.
		r.Get("/plans", h.ListPlans)
		r.Get("/plans/resolve", h.ResolvePlan)
		r.Post("/plans/validate", h.ValidateTransition)

		// Stateless payment checks.
		r.Post("/payments/verify", h.VerifyPayment)
		r.Post("/payments/detect-preview", h.PreviewDetect)

		// Per-user flows.
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/progress", h.GetProgress)
			r.Post("/payments", h.SubmitPayment)
			r.Post("/payments/detect", h.DetectPayment)
			r.With(requireOperator(adminToken)).Post("/upgrade", h.Upgrade)
			r.Post("/surveys/{surveyID}/complete", h.CompleteSurvey)
		})
	})

	return r
}
