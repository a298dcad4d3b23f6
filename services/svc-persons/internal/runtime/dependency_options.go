package runtime

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/hashicorp/vault/api"

	"github.com/architeacher/persons/pkg/decorator"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics/noop"
	"github.com/architeacher/persons/pkg/metrics/prometheus"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/audit"
	inboundhttp "github.com/architeacher/persons/services/svc-persons/internal/adapters/inbound/http"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/mappers"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/repos"
	"github.com/architeacher/persons/services/svc-persons/internal/config"
	"github.com/architeacher/persons/services/svc-persons/internal/infrastructure"
	infraPostgres "github.com/architeacher/persons/services/svc-persons/internal/infrastructure/postgres"
	"github.com/architeacher/persons/services/svc-persons/internal/services"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases"
	"github.com/architeacher/persons/services/svc-persons/migrations"
)

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithLogger(),
		WithSecretsRepository(),
		WithConfigLoader(ctx),
		WithTracing(ctx),
		WithMetrics(),
		WithPersistence(ctx),
		WithCache(),
		WithServices(),
		WithApplication(),
		WithHTTPServer(),
	}
}

// migrationOptions resolve only what running migrations needs.
func migrationOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithLogger(),
		WithSecretsRepository(),
		WithConfigLoader(ctx),
	}
}

// WithConfig keeps a configuration supplied through WithServiceConfig and
// otherwise reads env files and the environment.
func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		if d.config != nil {
			return nil
		}

		cfg, err := config.Init(d.envFiles...)
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		d.infra.logger = logger.New(d.config.Logging.Level, d.config.Logging.Format)

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = d.config.SecretsStorage.Address
		vaultConfig.Timeout = d.config.SecretsStorage.Timeout

		if d.config.SecretsStorage.TLSSkipVerify {
			vaultConfig.HttpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if d.config.SecretsStorage.Namespace != "" {
			client.SetNamespace(d.config.SecretsStorage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

// WithConfigLoader overlays Vault secrets when secret storage is enabled. The
// loader is kept either way so the running service can dump its settings.
func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		d.configLoader = config.NewLoader(d.config, d.repos.secretsRepo)

		if d.repos.secretsRepo == nil {
			return nil
		}

		if err := d.configLoader.Load(ctx); err != nil {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		d.infra.logger.Info().Str("mount", d.config.SecretsStorage.MountPath).Msg("secrets loaded from Vault")

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Enabled {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tp, shutdown, err := infrastructure.NewTracerProvider(ctx, d.config.App, d.config.Telemetry)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.onCleanup("tracer", shutdown)

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		client := prometheus.NewClient(d.config.Telemetry.Metrics.Namespace)
		d.infra.metricsClient = client
		d.onCleanup("metrics", client.Shutdown)

		return nil
	}
}

// WithPersistence selects the person store: Postgres, migrated on start when
// auto-migrate is set, or the in-process store.
func WithPersistence(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		switch d.config.Database.Driver {
		case config.DriverMemory:
			repo := repos.NewMemoryRepository()
			d.repos.personsRepo = repo
			d.checkers = append(d.checkers, repo)

			d.infra.logger.Warn().Msg("using the in-memory person store, data is lost on restart")

			return nil
		case config.DriverPostgres:
		default:
			return fmt.Errorf("unsupported database driver %q", d.config.Database.Driver)
		}

		if d.config.Database.AutoMigrate {
			if err := infraPostgres.Migrate(migrations.FS, d.config.Database.DSN(), infraPostgres.DirectionUp, d.infra.logger); err != nil {
				return err
			}
		}

		pool, err := infraPostgres.NewPool(ctx, d.config.Database, d.infra.logger)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		d.infra.dbPool = pool
		d.onCleanup("postgres", func(context.Context) error {
			pool.Close()

			return nil
		})

		repo := repos.NewPersonsRepository(
			pool,
			repos.NewPgxScanner(),
			repos.NewSpecificationTranslator(&d.infra.logger),
			d.infra.logger,
		)
		d.repos.personsRepo = repo
		d.checkers = append(d.checkers, repo)

		return nil
	}
}

// WithCache connects KeyDB when enabled. It backs the count cache and the
// idempotency store.
func WithCache() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Cache.Enabled {
			return nil
		}

		client := infrastructure.NewKeyDBClient(d.config.Cache, d.infra.logger)
		d.infra.cacheClient = client
		d.checkers = append(d.checkers, client)
		d.onCleanup("keydb", func(context.Context) error {
			return client.Close()
		})

		d.repos.idempotencyRepo = repos.NewIdempotencyRepository(client)

		if d.config.Cache.CountEnabled {
			d.repos.countCache = repos.NewCountCacheRepository(client, d.config.Cache.CircuitBreaker, d.infra.logger)
		}

		return nil
	}
}

func WithServices() DependencyOption {
	return func(d *dependencies) error {
		mapper := mappers.NewPersonMapper()

		// A nil *CountCacheRepository must not reach the service as a non-nil
		// interface.
		var invalidator services.CountInvalidator
		if d.repos.countCache != nil {
			invalidator = d.repos.countCache
		}

		d.services.persons = services.NewPersonService(
			d.repos.personsRepo,
			mapper,
			audit.NewContextAuditor(),
			invalidator,
			d.infra.logger,
		)
		d.services.personsQuery = services.NewPersonQueryService(d.repos.personsRepo, mapper, d.infra.logger)

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		backends := usecases.Backends{
			PersonService:      d.services.persons,
			PersonQueryService: d.services.personsQuery,
			CountCacheConfig: decorator.CacheConfig{
				Enabled:      d.config.Cache.CountEnabled,
				TTL:          d.config.Cache.CountTTL,
				WriteTimeout: d.config.Cache.WriteTimeout,
			},
			Dependencies: d.checkers,
		}

		if d.repos.countCache != nil {
			backends.CountCache = d.repos.countCache
		}

		d.app = usecases.NewApplication(backends, d.infra.logger, d.infra.metricsClient, d.infra.tracerProvider)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		routerConfig := inboundhttp.RouterConfig{
			App:           d.app,
			Logger:        d.infra.logger,
			MetricsClient: d.infra.metricsClient,
			Config:        d.config,
		}

		if d.repos.idempotencyRepo != nil {
			routerConfig.IdempotencyCache = d.repos.idempotencyRepo
		}

		if d.config.ThrottledRateLimiting.Store == config.RateLimitStoreKeyDB {
			if d.infra.cacheClient == nil {
				return fmt.Errorf("rate limiting store %q needs the cache enabled", config.RateLimitStoreKeyDB)
			}

			routerConfig.RateLimitStore = repos.NewRateLimitStore(d.infra.cacheClient)
		}

		router, err := inboundhttp.NewRouter(routerConfig)
		if err != nil {
			return fmt.Errorf("building router: %w", err)
		}

		d.infra.httpServer = &http.Server{
			Addr:              net.JoinHostPort(d.config.HTTPServer.Host, strconv.FormatUint(uint64(d.config.HTTPServer.Port), 10)),
			Handler:           router,
			ReadTimeout:       d.config.HTTPServer.ReadTimeout,
			ReadHeaderTimeout: d.config.HTTPServer.ReadTimeout,
			WriteTimeout:      d.config.HTTPServer.WriteTimeout,
			IdleTimeout:       d.config.HTTPServer.IdleTimeout,
		}

		return nil
	}
}
