package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/architeacher/persons/pkg/circuitbreaker"
)

var (
	ServiceVersion string
	CommitSHA      string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Rate limiting stores.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreKeyDB  = "keydb"
)

type (
	ServiceConfig struct {
		App                   App                   `json:"app"`
		SecretsStorage        SecretsStorage        `json:"secrets_storage"`
		HTTPServer            HTTPServer            `json:"http_server"`
		Database              Database              `json:"database"`
		Cache                 Cache                 `json:"cache"`
		Idempotency           Idempotency           `json:"idempotency"`
		ThrottledRateLimiting ThrottledRateLimiting `json:"throttled_rate_limiting"`
		Pagination            Pagination            `json:"pagination"`
		Compression           Compression           `json:"compression"`
		Logging               Logging               `json:"logging"`
		Telemetry             Telemetry             `json:"telemetry"`
	}

	App struct {
		ServiceName    string      `envconfig:"APP_SERVICE_NAME" default:"svc-persons" json:"service_name"`
		ServiceVersion string      `envconfig:"APP_SERVICE_VERSION" default:"dev" json:"service_version"`
		CommitSHA      string      `envconfig:"APP_COMMIT_SHA" default:"" json:"commit_sha"`
		ClientAppName  string      `envconfig:"APP_CLIENT_NAME" default:"personsApp" json:"client_app_name"`
		Env            Environment `json:"environment"`
	}

	Environment struct {
		Name string `envconfig:"APP_ENVIRONMENT" default:"development" json:"env"`
	}

	SecretsStorage struct {
		Enabled       bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address       string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token         string        `envconfig:"VAULT_TOKEN" default:"" json:"-"`
		RoleID        string        `envconfig:"VAULT_ROLE_ID" default:"" json:"-"`
		SecretID      string        `envconfig:"VAULT_SECRET_ID" default:"" json:"-"`
		AuthMethod    string        `envconfig:"VAULT_AUTH_METHOD" default:"token" json:"auth_method"`
		MountPath     string        `envconfig:"VAULT_MOUNT_PATH" default:"svc-persons" json:"mount_path"`
		Namespace     string        `envconfig:"VAULT_NAMESPACE" default:"" json:"namespace,omitempty"`
		Timeout       time.Duration `envconfig:"VAULT_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries    uint          `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
		TLSSkipVerify bool          `envconfig:"VAULT_TLS_SKIP_VERIFY" default:"false" json:"tls_skip_verify"`
	}

	HTTPServer struct {
		Host            string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		Port            uint          `envconfig:"HTTP_SERVER_PORT" default:"8080" json:"port"`
		ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		RequestTimeout  time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"30s" json:"request_timeout"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
	}

	Database struct {
		Driver          string        `envconfig:"DATABASE_DRIVER" default:"postgres" json:"driver"`
		Host            string        `envconfig:"POSTGRES_HOST" default:"postgres" json:"host"`
		Port            uint          `envconfig:"POSTGRES_PORT" default:"5432" json:"port"`
		Database        string        `envconfig:"POSTGRES_DATABASE" default:"persons" json:"database"`
		Username        string        `envconfig:"POSTGRES_USERNAME" default:"postgres" json:"username"`
		Password        string        `envconfig:"POSTGRES_PASSWORD" default:"" json:"-"`
		SSLMode         string        `envconfig:"POSTGRES_SSL_MODE" default:"disable" json:"ssl_mode"`
		MaxConnections  int32         `envconfig:"POSTGRES_MAX_CONNECTIONS" default:"25" json:"max_connections"`
		MinConnections  int32         `envconfig:"POSTGRES_MIN_CONNECTIONS" default:"5" json:"min_connections"`
		ConnectTimeout  time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		ConnectRetries  uint          `envconfig:"POSTGRES_CONNECT_RETRIES" default:"5" json:"connect_retries"`
		MaxConnLifetime time.Duration `envconfig:"POSTGRES_MAX_CONN_LIFETIME" default:"1h" json:"max_conn_lifetime"`
		MaxConnIdleTime time.Duration `envconfig:"POSTGRES_MAX_CONN_IDLE_TIME" default:"30m" json:"max_conn_idle_time"`
		AutoMigrate     bool          `envconfig:"POSTGRES_AUTO_MIGRATE" default:"true" json:"auto_migrate"`
	}

	Cache struct {
		Enabled        bool                  `envconfig:"CACHE_ENABLED" default:"false" json:"enabled"`
		Address        string                `envconfig:"CACHE_ADDRESS" default:"keydb:6379" json:"address"`
		Password       string                `envconfig:"CACHE_PASSWORD" default:"" json:"-"`
		DB             uint                  `envconfig:"CACHE_DB" default:"0" json:"db"`
		PoolSize       uint                  `envconfig:"CACHE_POOL_SIZE" default:"10" json:"pool_size"`
		MinIdleConns   uint                  `envconfig:"CACHE_MIN_IDLE_CONNS" default:"3" json:"min_idle_conns"`
		DialTimeout    time.Duration         `envconfig:"CACHE_DIAL_TIMEOUT" default:"5s" json:"dial_timeout"`
		ReadTimeout    time.Duration         `envconfig:"CACHE_READ_TIMEOUT" default:"3s" json:"read_timeout"`
		WriteTimeout   time.Duration         `envconfig:"CACHE_WRITE_TIMEOUT" default:"3s" json:"write_timeout"`
		PoolTimeout    time.Duration         `envconfig:"CACHE_POOL_TIMEOUT" default:"5s" json:"pool_timeout"`
		MaxRetries     uint                  `envconfig:"CACHE_MAX_RETRIES" default:"3" json:"max_retries"`
		DefaultExpiry  time.Duration         `envconfig:"CACHE_DEFAULT_EXPIRY" default:"24h" json:"default_expiry"`
		CountEnabled   bool                  `envconfig:"CACHE_COUNT_ENABLED" default:"true" json:"count_enabled"`
		CountTTL       time.Duration         `envconfig:"CACHE_COUNT_TTL" default:"30s" json:"count_ttl"`
		CircuitBreaker circuitbreaker.Config `envconfig:"CIRCUIT_BREAKER" json:"circuit_breaker"`
	}

	Idempotency struct {
		Enabled          bool          `envconfig:"IDEMPOTENCY_ENABLED" default:"true" json:"enabled"`
		CacheTTL         time.Duration `envconfig:"IDEMPOTENCY_CACHE_TTL" default:"24h" json:"cache_ttl"`
		LockTTL          time.Duration `envconfig:"IDEMPOTENCY_LOCK_TTL" default:"30s" json:"lock_ttl"`
		RequiredMethods  []string      `envconfig:"IDEMPOTENCY_REQUIRED_METHODS" default:"POST" json:"required_methods"`
		HeaderName       string        `envconfig:"IDEMPOTENCY_HEADER" default:"Idempotency-Key" json:"header_name"`
		ReplayedHeader   string        `envconfig:"IDEMPOTENCY_REPLAYED_HEADER" default:"Idempotent-Replayed" json:"replayed_header"`
		GracefulDegraded bool          `envconfig:"IDEMPOTENCY_GRACEFUL_DEGRADED" default:"true" json:"graceful_degraded"`
	}

	ThrottledRateLimiting struct {
		Enabled           bool     `envconfig:"RATE_LIMITING_ENABLED" default:"true" json:"enabled"`
		RequestsPerSecond uint     `envconfig:"RATE_LIMITING_REQUESTS_PER_SECOND" default:"50" json:"requests_per_second"`
		BurstSize         uint     `envconfig:"RATE_LIMITING_BURST_SIZE" default:"100" json:"burst_size"`
		MaxKeys           uint     `envconfig:"RATE_LIMITING_MAX_KEYS" default:"1000" json:"max_keys"`
		Store             string   `envconfig:"RATE_LIMITING_STORE" default:"memory" json:"store"`
		SkipPaths         []string `envconfig:"RATE_LIMITING_SKIP_PATHS" default:"/management/health/liveness,/management/health/readiness" json:"skip_paths"`
	}

	Pagination struct {
		DefaultPageSize uint `envconfig:"PAGINATION_DEFAULT_SIZE" default:"20" json:"default_page_size"`
		MaxPageSize     uint `envconfig:"PAGINATION_MAX_SIZE" default:"2000" json:"max_page_size"`
	}

	Compression struct {
		Enabled bool `envconfig:"COMPRESSION_ENABLED" default:"true" json:"enabled"`
		Level   int  `envconfig:"COMPRESSION_LEVEL" default:"5" json:"level"`
	}

	Logging struct {
		Level     string    `envconfig:"LOG_LEVEL" default:"info" json:"level"`
		Format    string    `envconfig:"LOG_FORMAT" default:"json" json:"format"`
		AccessLog AccessLog `json:"access_log"`
	}

	AccessLog struct {
		Enabled         bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
	}

	Telemetry struct {
		Enabled        bool    `envconfig:"OTEL_ENABLED" default:"false" json:"enabled"`
		ExporterType   string  `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`
		OTLPEndpoint   string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"" json:"otlp_endpoint"`
		ServiceName    string  `envconfig:"OTEL_SERVICE_NAME" default:"svc-persons" json:"service_name"`
		ServiceVersion string  `envconfig:"OTEL_SERVICE_VERSION" default:"1.0.0" json:"service_version"`
		Metrics        Metrics `json:"metrics"`
		Traces         Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled   bool   `envconfig:"METRICS_ENABLED" default:"true" json:"enabled"`
		Namespace string `envconfig:"METRICS_NAMESPACE" default:"persons" json:"namespace"`
	}

	Traces struct {
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1.0" json:"sampler_ratio"`
	}
)

func (c *ServiceConfig) GetEnvironment() int {
	switch c.App.Env.Name {
	case "production", "prod":
		return Production
	case "staging", "stg":
		return Staging
	case "sandbox", "sbx":
		return Sandbox
	default:
		return Development
	}
}

func (c *ServiceConfig) IsProduction() bool {
	return c.GetEnvironment() == Production
}

// DSN renders the connection string; credentials are escaped.
func (d Database) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Database,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}

	return dsn.String()
}
