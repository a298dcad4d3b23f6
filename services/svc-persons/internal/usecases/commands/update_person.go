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
	// UpdatePersonCommand replaces the person identified by Person.ID.
	UpdatePersonCommand struct {
		Person model.PersonDTO
	}

	UpdatePersonCommandHandler = decorator.CommandHandler[UpdatePersonCommand, model.PersonDTO]

	updatePersonCommandHandler struct {
		personService ports.PersonService
	}
)

func NewUpdatePersonCommandHandler(
	svc ports.PersonService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) UpdatePersonCommandHandler {
	return decorator.ApplyCommandDecorators[UpdatePersonCommand, model.PersonDTO](
		updatePersonCommandHandler{personService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h updatePersonCommandHandler) Handle(ctx context.Context, cmd UpdatePersonCommand) (model.PersonDTO, error) {
	return h.personService.Update(ctx, cmd.Person)
}
