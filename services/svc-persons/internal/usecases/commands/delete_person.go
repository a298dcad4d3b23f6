package commands

import (
	"context"

	"github.com/architeacher/persons/pkg/decorator"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	DeletePersonCommand struct {
		ID int64
	}

	DeletePersonCommandHandler = decorator.CommandHandler[DeletePersonCommand, struct{}]

	deletePersonCommandHandler struct {
		personService ports.PersonService
	}
)

func NewDeletePersonCommandHandler(
	svc ports.PersonService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DeletePersonCommandHandler {
	return decorator.ApplyCommandDecorators[DeletePersonCommand, struct{}](
		deletePersonCommandHandler{personService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h deletePersonCommandHandler) Handle(ctx context.Context, cmd DeletePersonCommand) (struct{}, error) {
	return struct{}{}, h.personService.Delete(ctx, cmd.ID)
}
