package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/persons/services/svc-persons/internal/config"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases"
)

// RouterConfig carries what the HTTP surface needs. A nil IdempotencyCache
// disables idempotent replays; a nil RateLimitStore falls back to an
// in-process store sized by MaxKeys.
type RouterConfig struct {
	App              *usecases.Application
	Logger           logger.Logger
	MetricsClient    metrics.Client
	Config           *config.ServiceConfig
	IdempotencyCache ports.IdempotencyCache
	RateLimitStore   throttled.GCRAStoreCtx
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(chimiddleware.Timeout(cfg.Config.HTTPServer.RequestTimeout))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS([]string{"*"}, "X-"+cfg.Config.App.ClientAppName+"-alert",
		"X-"+cfg.Config.App.ClientAppName+"-error", "X-"+cfg.Config.App.ClientAppName+"-params"))
	router.Use(middleware.UserLogin())

	if cfg.Config.Compression.Enabled {
		router.Use(middleware.Compression(cfg.Config.Compression))
	}

	if cfg.Config.Telemetry.Metrics.Enabled && cfg.MetricsClient != nil {
		router.Use(middleware.Metrics(cfg.MetricsClient))
		cfg.Logger.Info().Msg("HTTP metrics collection enabled")
	}

	if cfg.Config.Logging.AccessLog.Enabled {
		healthFilter := middleware.NewHealthCheckFilter(cfg.Config.Logging.AccessLog.LogHealthChecks)

		router.Use(healthFilter.Middleware)
		router.Use(middleware.AccessLogger(cfg.Logger))
		cfg.Logger.Info().
			Bool("log_health_checks", cfg.Config.Logging.AccessLog.LogHealthChecks).
			Msg("structured access logging enabled")
	}

	if cfg.Config.ThrottledRateLimiting.Enabled {
		store := cfg.RateLimitStore
		if store == nil {
			memStore, err := memstore.NewCtx(int(cfg.Config.ThrottledRateLimiting.MaxKeys))
			if err != nil {
				return nil, fmt.Errorf("creating rate limit store: %w", err)
			}

			store = memStore
		}

		rateLimiter, err := middleware.ThrottledRateLimiting(cfg.Config.ThrottledRateLimiting, store, cfg.Logger)
		if err != nil {
			return nil, err
		}

		router.Use(rateLimiter)
		cfg.Logger.Info().
			Uint("requests_per_second", cfg.Config.ThrottledRateLimiting.RequestsPerSecond).
			Uint("burst_size", cfg.Config.ThrottledRateLimiting.BurstSize).
			Msg("rate limiting enabled")
	}

	router.Use(middleware.Idempotency(cfg.IdempotencyCache, cfg.Config.Idempotency, cfg.Logger))

	handlers.NewPersonHandler(cfg.App, handlers.PersonHandlerConfig{
		ClientAppName:   cfg.Config.App.ClientAppName,
		DefaultPageSize: cfg.Config.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Config.Pagination.MaxPageSize,
	}, cfg.Logger).Routes(router)

	handlers.NewManagementHandler(cfg.App, cfg.MetricsClient).Routes(router)

	if !cfg.Config.Telemetry.Enabled {
		return router, nil
	}

	cfg.Logger.Info().Msg("distributed tracing enabled")

	return otelhttp.NewHandler(router, cfg.Config.Telemetry.ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	), nil
}
