package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fraudlens/internal/api/handlers"
	apimiddleware "fraudlens/internal/api/middleware"
	"fraudlens/internal/config"
	"fraudlens/internal/metrics"
	"fraudlens/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	limiter  apimiddleware.RateLimitStore
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. limiter may be nil, in which
// case rate limiting is skipped even when enabled.
func NewRouter(cfg config.Config, h *handlers.Handlers, limiter apimiddleware.RateLimitStore, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		limiter:  limiter,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	if r.config.Metrics.Enabled {
		router.Use(metrics.Middleware)
	}
	router.Use(middleware.Recoverer)
	if r.config.Server.RequestTimeout > 0 {
		router.Use(middleware.Timeout(r.config.Server.RequestTimeout))
	}

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Probes
	router.Get("/ping", r.handlers.Health.Ping)
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	if r.config.Metrics.Enabled {
		router.Method(http.MethodGet, r.config.Metrics.Path, metrics.Handler())
	}

	router.Route("/api", func(api chi.Router) {
		if r.config.RateLimit.Enabled && r.limiter != nil {
			api.Use(apimiddleware.RateLimiter(r.limiter, r.config.RateLimit, r.logger))
		}

		api.Post("/analyze-text", r.handlers.Analysis.AnalyzeText)
		api.Post("/analyze-voice", r.handlers.Analysis.AnalyzeVoice)
		api.Post("/analyze-ocr-text", r.handlers.Analysis.AnalyzeOCRText)
		api.Post("/scan-url", r.handlers.Analysis.ScanURL)
		api.Post("/behavior", r.handlers.Analysis.AnalyzeBehavior)
	})

	return router
}
