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
	PartialUpdatePersonCommand struct {
		ID    int64
		Patch model.PersonPatch
	}

	PartialUpdatePersonCommandHandler = decorator.CommandHandler[PartialUpdatePersonCommand, model.PersonDTO]

	partialUpdatePersonCommandHandler struct {
		personService ports.PersonService
	}
)

func NewPartialUpdatePersonCommandHandler(
	svc ports.PersonService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) PartialUpdatePersonCommandHandler {
	return decorator.ApplyCommandDecorators[PartialUpdatePersonCommand, model.PersonDTO](
		partialUpdatePersonCommandHandler{personService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h partialUpdatePersonCommandHandler) Handle(ctx context.Context, cmd PartialUpdatePersonCommand) (model.PersonDTO, error) {
	return h.personService.PartialUpdate(ctx, cmd.ID, cmd.Patch)
}
