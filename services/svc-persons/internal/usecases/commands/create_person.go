package commands

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
	CreatePersonCommand struct {
		Person model.PersonDTO
	}

	CreatePersonCommandHandler = decorator.CommandHandler[CreatePersonCommand, model.PersonDTO]

	createPersonCommandHandler struct {
		personService ports.PersonService
	}
)

func NewCreatePersonCommandHandler(
	svc ports.PersonService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreatePersonCommandHandler {
	return decorator.ApplyCommandDecorators[CreatePersonCommand, model.PersonDTO](
		createPersonCommandHandler{personService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createPersonCommandHandler) Handle(ctx context.Context, cmd CreatePersonCommand) (model.PersonDTO, error) {
	return h.personService.Save(ctx, cmd.Person)
}
