package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/repos"
	"github.com/architeacher/persons/services/svc-persons/internal/config"
	"github.com/architeacher/persons/services/svc-persons/internal/infrastructure"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
	"github.com/architeacher/persons/services/svc-persons/internal/services"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases"
)

type (
	infrastructureDep struct {
		httpServer     *http.Server
		dbPool         *pgxpool.Pool
		cacheClient    *infrastructure.KeydbClient
		logger         logger.Logger
		metricsClient  metrics.Client
		tracerProvider otelTrace.TracerProvider
	}

	repositories struct {
		secretsRepo     ports.SecretsRepository
		personsRepo     ports.PersonsRepository
		countCache      *repos.CountCacheRepository
		idempotencyRepo ports.IdempotencyCache
	}

	servicesDep struct {
		persons      *services.PersonService
		personsQuery *services.PersonQueryService
	}

	cleanupFunc struct {
		resource string
		fn       func(ctx context.Context) error
	}

	dependencies struct {
		config       *config.ServiceConfig
		configLoader *config.Loader
		envFiles     []string

		infra infrastructureDep

		repos repositories

		services servicesDep

		app *usecases.Application

		checkers []ports.DependencyChecker

		cleanupFuncs []cleanupFunc
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(ctx context.Context, preset *config.ServiceConfig, envFiles []string, opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{
		config:   preset,
		envFiles: envFiles,
	}

	if len(opts) == 0 {
		opts = defaultOptions(ctx)
	}

	for _, opt := range opts {
		if err := opt(deps); err != nil {
			deps.release(ctx)

			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

// onCleanup registers fn to run at shutdown. Resources are released in the
// reverse order of their registration.
func (d *dependencies) onCleanup(resource string, fn func(ctx context.Context) error) {
	d.cleanupFuncs = append(d.cleanupFuncs, cleanupFunc{resource: resource, fn: fn})
}

// release runs the cleanups registered so far, used when wiring fails halfway.
func (d *dependencies) release(ctx context.Context) {
	for i := len(d.cleanupFuncs) - 1; i >= 0; i-- {
		_ = d.cleanupFuncs[i].fn(ctx)
	}
}
