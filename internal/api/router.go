// Package api implements the donations HTTP API.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/erazemk/donations/internal/auth"
	"github.com/erazemk/donations/internal/donation"
	"github.com/erazemk/donations/internal/metrics"
	"github.com/erazemk/donations/internal/model"
)

// Config holds the router's dependencies.
type Config struct {
	DB      *sql.DB
	Tokens  *auth.Tokens
	Service *donation.Service
	Logger  zerolog.Logger

	// Metrics and Gatherer are optional. Without a Gatherer /metrics is not served.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Limiter throttles the public submission endpoints. Nil disables it.
	Limiter *RateLimiter

	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a reverse proxy that sets them.
	TrustProxy bool
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestID, Logger(cfg.Logger), middleware.Recoverer, Instrument(cfg.Metrics))

	authHandler := &AuthHandler{DB: cfg.DB, Tokens: cfg.Tokens}
	donationsHandler := &DonationsHandler{DB: cfg.DB, Service: cfg.Service}
	itemsHandler := &ItemsHandler{DB: cfg.DB}
	orgsHandler := &OrganizationsHandler{DB: cfg.DB}
	usersHandler := &UsersHandler{DB: cfg.DB}

	authMW := AuthMiddleware(cfg.Tokens, cfg.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.Limiter != nil {
		throttle = cfg.Limiter.Middleware
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.DB.PingContext(r.Context()); err != nil {
			jsonError(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth/v1", func(r chi.Router) {
		r.With(throttle).Post("/login", authHandler.Login)
		r.With(authMW).Post("/logout", authHandler.Logout)
	})

	r.Route("/donation/v1", func(r chi.Router) {
		// Public submission forms.
		r.With(throttle).Post("/outgoing", donationsHandler.CreateOutgoing)
		r.With(throttle).Post("/incoming", donationsHandler.CreateIncoming)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Get("/", donationsHandler.List)
			r.Get("/details/{donationId}", donationsHandler.Details)
			r.Get("/demographics/{donationId}", donationsHandler.Demographics)

			r.With(requireAdmin).Put("/outgoing/{donationId}", donationsHandler.UpdateOutgoing)
			r.With(requireAdmin).Delete("/outgoing/{donationId}", donationsHandler.DeleteOutgoing)
		})
	})

	r.Route("/item/v1", func(r chi.Router) {
		// The public forms list items to pick from.
		r.Get("/", itemsHandler.List)
		r.Get("/{id}", itemsHandler.Get)
		r.With(authMW, requireAdmin).Post("/", itemsHandler.Create)
	})

	r.Route("/organization/v1", func(r chi.Router) {
		r.Get("/", orgsHandler.List)
		r.With(authMW, requireAdmin).Post("/", orgsHandler.Create)
	})

	r.Route("/users/v1", func(r chi.Router) {
		r.Use(authMW, requireAdmin)
		r.Get("/", usersHandler.List)
		r.Post("/", usersHandler.Create)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
