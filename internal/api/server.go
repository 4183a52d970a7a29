package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/edvin/skinsight/internal/api/handler"
	mw "github.com/edvin/skinsight/internal/api/middleware"
	"github.com/edvin/skinsight/internal/config"
	"github.com/edvin/skinsight/internal/core"
	"github.com/edvin/skinsight/internal/model"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	cfg      *config.Config

	objectStore handler.ObjectStore
	chatService handler.ChatService
	rateLimiter *mw.RateLimiter
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, cfg *config.Config,
	objectStore handler.ObjectStore, chatService handler.ChatService) *Server {
	return newServer(logger, core.NewServices(pool, logger), pool, cfg, objectStore, chatService)
}

func newServer(logger zerolog.Logger, services *core.Services, pool *pgxpool.Pool, cfg *config.Config,
	objectStore handler.ObjectStore, chatService handler.ChatService) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		services:    services,
		pool:        pool,
		cfg:         cfg,
		objectStore: objectStore,
		chatService: chatService,
		rateLimiter: mw.NewRateLimiter(cfg.RateLimitCalls, cfg.RateLimitWindow),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.SecurityHeaders)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		apiKey := handler.NewAPIKey(s.services.APIKey)

		// Key creation bootstraps a new client and carries no credential;
		// the rate limiter keys it by remote address.
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimiter.Middleware)
			r.Post("/api-keys", apiKey.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(s.services.APIKey))
			r.Use(s.rateLimiter.Middleware)

			// API keys
			r.Get("/api-keys", apiKey.List)
			r.Get("/api-keys/me", apiKey.Me)
			r.Get("/api-keys/{id}", apiKey.Lookup)
			r.Post("/api-keys/{id}/revoke", apiKey.Revoke)
			r.Delete("/api-keys/{id}", apiKey.Delete)

			// Images
			image := handler.NewImage(s.services.Image, s.objectStore, s.cfg.MaxUploadBytes)
			r.With(mw.RequireScope(model.ScopeUpload)).Post("/images", image.Upload)
			r.With(mw.RequireScope(model.ScopeUpload)).Get("/images/{id}", image.Get)

			// Skin analysis
			analysis := handler.NewAnalysis(s.services.Analysis)
			r.With(mw.RequireScope(model.ScopeAnalyze)).Post("/images/{id}/analysis", analysis.Create)
			r.With(mw.RequireScope(model.ScopeAnalyze)).Get("/images/{id}/analysis", analysis.GetLatest)

			// Restaurant reviews
			review := handler.NewReview(s.services.Review)
			r.Post("/reviews", review.Create)
			r.Get("/reviews/{id}", review.Get)
			r.With(mw.RequireScope(model.ScopeAnalyze)).Put("/reviews/{id}/status", review.SetStatus)
			r.Get("/restaurants/{id}/reviews", review.ListByRestaurant)

			// Ordering assistant
			assistant := handler.NewAssistant(s.chatService)
			r.Post("/assistant/chat", assistant.Chat)
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
