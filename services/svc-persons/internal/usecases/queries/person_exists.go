package queries

import (
	"context"

	"github.com/architeacher/persons/pkg/decorator"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	PersonExistsQuery struct {
		ID int64
	}

	PersonExistsQueryHandler = decorator.QueryHandler[PersonExistsQuery, bool]

	personExistsQueryHandler struct {
		personService ports.PersonService
	}
)

func NewPersonExistsQueryHandler(
	svc ports.PersonService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) PersonExistsQueryHandler {
	return decorator.ApplyQueryDecorators[PersonExistsQuery, bool](
		personExistsQueryHandler{personService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h personExistsQueryHandler) Execute(ctx context.Context, query PersonExistsQuery) (bool, error) {
	return h.personService.Exists(ctx, query.ID)
}
