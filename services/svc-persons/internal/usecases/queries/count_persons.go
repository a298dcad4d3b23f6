package queries

import (
	"context"
	"time"

	"github.com/architeacher/persons/pkg/decorator"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	CountPersonsQuery struct {
		Criteria *model.PersonCriteria
	}

	CountPersonsQueryHandler = decorator.QueryHandler[CountPersonsQuery, int64]

	countPersonsQueryHandler struct {
		queryService ports.PersonQueryService
	}

	// countCache keys cached counts by the query's criteria.
	countCache struct {
		cache ports.CountCache
	}
)

// NewCountPersonsQueryHandler serves counts through cache when it is non-nil
// and enabled in cacheConfig.
func NewCountPersonsQueryHandler(
	svc ports.PersonQueryService,
	cache ports.CountCache,
	cacheConfig decorator.CacheConfig,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CountPersonsQueryHandler {
	var handler CountPersonsQueryHandler = countPersonsQueryHandler{queryService: svc}

	if cache != nil {
		handler = decorator.NewQueryCachingDecorator[CountPersonsQuery, int64](
			handler,
			countCache{cache: cache},
			cacheConfig,
			log,
		)
	}

	return decorator.ApplyQueryDecorators[CountPersonsQuery, int64](
		handler,
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h countPersonsQueryHandler) Execute(ctx context.Context, query CountPersonsQuery) (int64, error) {
	return h.queryService.CountByCriteria(ctx, query.Criteria)
}

func (c countCache) Get(ctx context.Context, query CountPersonsQuery) (int64, bool, error) {
	return c.cache.Get(ctx, query.Criteria)
}

func (c countCache) Set(ctx context.Context, query CountPersonsQuery, count int64, ttl time.Duration) error {
	return c.cache.Set(ctx, query.Criteria, count, ttl)
}
