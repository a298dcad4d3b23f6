package repos

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/architeacher/persons/pkg/circuitbreaker"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
	"github.com/architeacher/persons/services/svc-persons/internal/infrastructure"
)

const (
	countCacheVersion = "v1"
	countKeyPrefix    = "persons:count:" + countCacheVersion + ":"
	generationKey     = countKeyPrefix + "generation"
)

type (
	cachedCount struct {
		value int64
		hit   bool
	}

	// CountCacheRepository caches criteria counts in KeyDB/Redis. Keys embed a
	// generation number that every write bumps, so Invalidate is a single
	// INCR and stale entries simply expire.
	CountCacheRepository struct {
		client  *infrastructure.KeydbClient
		breaker *circuitbreaker.CircuitBreaker[cachedCount]
		logger  logger.Logger
	}
)

func NewCountCacheRepository(
	client *infrastructure.KeydbClient,
	breakerConfig circuitbreaker.Config,
	log logger.Logger,
) *CountCacheRepository {
	if breakerConfig.Name == "" {
		breakerConfig.Name = "persons-count-cache"
	}

	if breakerConfig.OnStateChange == nil {
		breakerConfig.OnStateChange = func(name string, from, to circuitbreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", string(from)).
				Str("to", string(to)).
				Msg("count cache circuit breaker changed state")
		}
	}

	return &CountCacheRepository{
		client:  client,
		breaker: circuitbreaker.New[cachedCount](breakerConfig),
		logger:  log,
	}
}

func (r *CountCacheRepository) Get(ctx context.Context, criteria *model.PersonCriteria) (int64, bool, error) {
	result, err := circuitbreaker.Execute(r.breaker, func() (cachedCount, error) {
		key, err := r.countKey(ctx, criteria)
		if err != nil {
			return cachedCount{}, err
		}

		data, err := r.client.Get(ctx, key)
		if err != nil {
			if errors.Is(err, infrastructure.ErrCacheMiss) {
				return cachedCount{}, nil
			}

			return cachedCount{}, err
		}

		value, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return cachedCount{}, fmt.Errorf("parsing cached count: %w", err)
		}

		return cachedCount{value: value, hit: true}, nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("getting cached count: %w", err)
	}

	return result.value, result.hit, nil
}

func (r *CountCacheRepository) Set(ctx context.Context, criteria *model.PersonCriteria, count int64, ttl time.Duration) error {
	_, err := circuitbreaker.Execute(r.breaker, func() (cachedCount, error) {
		key, err := r.countKey(ctx, criteria)
		if err != nil {
			return cachedCount{}, err
		}

		return cachedCount{}, r.client.Set(ctx, key, []byte(strconv.FormatInt(count, 10)), ttl)
	})
	if err != nil {
		return fmt.Errorf("setting cached count: %w", err)
	}

	return nil
}

// Invalidate bypasses the breaker: a skipped bump would leave stale counts
// reachable.
func (r *CountCacheRepository) Invalidate(ctx context.Context) error {
	if _, err := r.client.Incr(ctx, generationKey); err != nil {
		return fmt.Errorf("bumping count cache generation: %w", err)
	}

	return nil
}

func (r *CountCacheRepository) countKey(ctx context.Context, criteria *model.PersonCriteria) (string, error) {
	generation, err := r.client.GetInt64(ctx, generationKey)
	if err != nil {
		return "", fmt.Errorf("reading count cache generation: %w", err)
	}

	return countKeyPrefix + strconv.FormatInt(generation, 10) + ":" + strconv.FormatUint(criteria.Hash(), 16), nil
}
