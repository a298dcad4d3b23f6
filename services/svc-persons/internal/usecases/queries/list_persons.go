package queries

import (
	"context"

	"github.com/architeacher/persons/pkg/decorator"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	// ListPersonsQuery carries an already bound criteria; a nil Criteria
	// lists everything.
	ListPersonsQuery struct {
		Criteria *model.PersonCriteria
		Page     model.PageRequest
	}

	ListPersonsQueryHandler = decorator.QueryHandler[ListPersonsQuery, model.Page[model.PersonDTO]]

	listPersonsQueryHandler struct {
		queryService ports.PersonQueryService
	}
)

func NewListPersonsQueryHandler(
	svc ports.PersonQueryService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListPersonsQueryHandler {
	return decorator.ApplyQueryDecorators[ListPersonsQuery, model.Page[model.PersonDTO]](
		listPersonsQueryHandler{queryService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listPersonsQueryHandler) Execute(ctx context.Context, query ListPersonsQuery) (model.Page[model.PersonDTO], error) {
	return h.queryService.FindByCriteria(ctx, query.Criteria, query.Page)
}
