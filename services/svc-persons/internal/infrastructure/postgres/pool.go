package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/config"
)

// NewPool opens a pgx pool and retries the first ping with exponential
// backoff, so the service can start before the database accepts
// connections.
func NewPool(ctx context.Context, cfg config.Database, log logger.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	poolConfig.MinConns = cfg.MinConnections
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 500 * time.Millisecond

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()

		if pingErr := pool.Ping(pingCtx); pingErr != nil {
			log.Warn().Err(pingErr).
				Int("attempt", attempt).
				Str("host", cfg.Host).
				Msg("database not reachable yet")

			return struct{}{}, pingErr
		}

		return struct{}{}, nil
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(cfg.ConnectRetries+1),
	)
	if err != nil {
		pool.Close()

		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
