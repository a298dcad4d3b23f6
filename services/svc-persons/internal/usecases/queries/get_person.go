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
	GetPersonQuery struct {
		ID int64
	}

	GetPersonQueryHandler = decorator.QueryHandler[GetPersonQuery, model.PersonDTO]

	getPersonQueryHandler struct {
		personService ports.PersonService
	}
)

func NewGetPersonQueryHandler(
	svc ports.PersonService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) GetPersonQueryHandler {
	return decorator.ApplyQueryDecorators[GetPersonQuery, model.PersonDTO](
		getPersonQueryHandler{personService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h getPersonQueryHandler) Execute(ctx context.Context, query GetPersonQuery) (model.PersonDTO, error) {
	return h.personService.FindOne(ctx, query.ID)
}
