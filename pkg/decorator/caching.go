package decorator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/architeacher/persons/pkg/logger"
)

type (
	// CacheStatus describes how a cached query was served.
	CacheStatus string

	cacheStatusKey struct{}

	// CacheStatusRecorder is placed in the request context by the transport
	// so the status decided deep inside the handler chain can be reported.
	CacheStatusRecorder struct {
		status atomic.Value
	}

	CacheConfig struct {
		Enabled      bool
		TTL          time.Duration
		WriteTimeout time.Duration
	}

	CacheGetter[Q Query, R Result] interface {
		Get(ctx context.Context, query Q) (R, bool, error)
	}

	CacheSetter[Q Query, R Result] interface {
		Set(ctx context.Context, query Q, result R, ttl time.Duration) error
	}

	Cache[Q Query, R Result] interface {
		CacheGetter[Q, R]
		CacheSetter[Q, R]
	}

	queryCachingDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		cache  Cache[Q, R]
		config CacheConfig
		logger logger.Logger
	}
)

const (
	CacheStatusHit    CacheStatus = "HIT"
	CacheStatusMiss   CacheStatus = "MISS"
	CacheStatusBypass CacheStatus = "BYPASS"
	CacheStatusError  CacheStatus = "ERROR"

	defaultCacheWriteTimeout = 500 * time.Millisecond
)

// WithCacheStatusRecorder attaches a fresh recorder to ctx.
func WithCacheStatusRecorder(ctx context.Context) (context.Context, *CacheStatusRecorder) {
	recorder := &CacheStatusRecorder{}

	return context.WithValue(ctx, cacheStatusKey{}, recorder), recorder
}

// Status returns the last recorded status, BYPASS when nothing was recorded.
func (r *CacheStatusRecorder) Status() CacheStatus {
	if r == nil {
		return CacheStatusBypass
	}

	if status, ok := r.status.Load().(CacheStatus); ok {
		return status
	}

	return CacheStatusBypass
}

func recordCacheStatus(ctx context.Context, status CacheStatus) {
	if recorder, ok := ctx.Value(cacheStatusKey{}).(*CacheStatusRecorder); ok && recorder != nil {
		recorder.status.Store(status)
	}
}

// NewQueryCachingDecorator serves results from cache when possible. Cache
// failures never fail the query: a broken read falls through to the base
// handler and a broken write is only logged.
func NewQueryCachingDecorator[Q Query, R Result](
	base QueryHandler[Q, R],
	cache Cache[Q, R],
	config CacheConfig,
	log logger.Logger,
) QueryHandler[Q, R] {
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaultCacheWriteTimeout
	}

	return queryCachingDecorator[Q, R]{
		base:   base,
		cache:  cache,
		config: config,
		logger: log,
	}
}

func (d queryCachingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	if !d.config.Enabled || d.cache == nil {
		recordCacheStatus(ctx, CacheStatusBypass)

		return d.base.Execute(ctx, query)
	}

	cached, hit, err := d.cache.Get(ctx, query)
	if err != nil {
		log := d.logger.WithContext(ctx)
		log.Warn().Err(err).
			Str("query", generateActionName(query)).
			Msg("cache read failed, falling back to source")
	}

	if err == nil && hit {
		recordCacheStatus(ctx, CacheStatusHit)

		return cached, nil
	}

	result, execErr := d.base.Execute(ctx, query)
	if execErr != nil {
		return result, execErr
	}

	status := CacheStatusMiss
	if err != nil {
		status = CacheStatusError
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.config.WriteTimeout)
	defer cancel()

	if setErr := d.cache.Set(writeCtx, query, result, d.config.TTL); setErr != nil {
		status = CacheStatusError

		log := d.logger.WithContext(ctx)
		log.Warn().Err(setErr).
			Str("query", generateActionName(query)).
			Msg("cache write failed")
	}

	recordCacheStatus(ctx, status)

	return result, nil
}
