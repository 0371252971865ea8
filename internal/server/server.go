package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/garoui/electricite-be/internal/access"
	"github.com/garoui/electricite-be/internal/auth"
	"github.com/garoui/electricite-be/internal/config"
	"github.com/garoui/electricite-be/internal/http/handlers"
	"github.com/garoui/electricite-be/internal/http/respond"
	"github.com/garoui/electricite-be/internal/metrics"
	"github.com/garoui/electricite-be/internal/middleware"
	"github.com/garoui/electricite-be/internal/storage"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	Store    storage.Store
	Logger   *slog.Logger
	Registry *prometheus.Registry
	// Now overrides the wall clock used for tokens and subscriptions.
	Now func() time.Time
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner   *http.Server
	limiter *middleware.RateLimiter
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger

	collector := metrics.NewCollector(deps.Registry)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL).WithClock(now)
	gate := access.NewGate(deps.Store, now)
	authz := middleware.NewAuthorizer(auth.NewVerifier(tokens, deps.Store), gate, collector, logger)
	authn := auth.NewAuthenticator(deps.Store, tokens)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Window: cfg.RateLimitWindow,
		Max:    cfg.RateLimitMax,
	}, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP(cfg.TrustedProxyPrefixes()))
	r.Use(middleware.Logging(logger, collector))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusNotFound, respond.KindNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusMethodNotAllowed, respond.KindBadRequest, "method not allowed")
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware)

		handlers.NewHealthHandler(now(), deps.Store, logger).Register(r)

		r.Route("/auth", func(r chi.Router) {
			handlers.NewAuthHandler(deps.Store, authn, gate, handlers.AuthOptions{
				BcryptCost:   cfg.BcryptCost,
				AutoActivate: cfg.AutoActivate,
			}, logger).Register(r, authz)
		})
		r.Route("/subscriptions", func(r chi.Router) {
			handlers.NewSubscriptionHandler(deps.Store, gate, now, logger).Register(r, authz)
		})
		r.Route("/recruitment", func(r chi.Router) {
			handlers.NewRecruitmentHandler(deps.Store, logger).Register(r, authz)
		})
		r.Route("/admin", func(r chi.Router) {
			handlers.NewAdminHandler(deps.Store, logger).Register(r, authz)
		})
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, limiter: limiter}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server and stops background work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.inner.Shutdown(ctx)
}
