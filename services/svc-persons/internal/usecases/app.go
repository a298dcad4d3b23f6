package usecases

import (
	"github.com/architeacher/persons/pkg/decorator"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases/commands"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases/queries"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Commands struct {
		CreatePerson        commands.CreatePersonCommandHandler
		UpdatePerson        commands.UpdatePersonCommandHandler
		PartialUpdatePerson commands.PartialUpdatePersonCommandHandler
		DeletePerson        commands.DeletePersonCommandHandler
	}

	Queries struct {
		GetPerson      queries.GetPersonQueryHandler
		PersonExists   queries.PersonExistsQueryHandler
		ListPersons    queries.ListPersonsQueryHandler
		CountPersons   queries.CountPersonsQueryHandler
		FetchLiveness  queries.FetchLivenessQueryHandler
		FetchReadiness queries.FetchReadinessQueryHandler
	}

	Application struct {
		Commands Commands
		Queries  Queries
	}

	// Backends groups what the application reads from and writes to. A nil
	// CountCache disables count caching.
	Backends struct {
		PersonService      ports.PersonService
		PersonQueryService ports.PersonQueryService
		CountCache         ports.CountCache
		CountCacheConfig   decorator.CacheConfig
		Dependencies       []ports.DependencyChecker
	}
)

func NewApplication(
	backends Backends,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *Application {
	svc := backends.PersonService
	querySvc := backends.PersonQueryService

	return &Application{
		Commands: Commands{
			CreatePerson:        commands.NewCreatePersonCommandHandler(svc, log, metricsClient, tracerProvider),
			UpdatePerson:        commands.NewUpdatePersonCommandHandler(svc, log, metricsClient, tracerProvider),
			PartialUpdatePerson: commands.NewPartialUpdatePersonCommandHandler(svc, log, metricsClient, tracerProvider),
			DeletePerson:        commands.NewDeletePersonCommandHandler(svc, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			GetPerson:    queries.NewGetPersonQueryHandler(svc, log, metricsClient, tracerProvider),
			PersonExists: queries.NewPersonExistsQueryHandler(svc, log, metricsClient, tracerProvider),
			ListPersons:  queries.NewListPersonsQueryHandler(querySvc, log, metricsClient, tracerProvider),
			CountPersons: queries.NewCountPersonsQueryHandler(
				querySvc,
				backends.CountCache,
				backends.CountCacheConfig,
				log,
				metricsClient,
				tracerProvider,
			),
			FetchLiveness:  queries.NewFetchLivenessQueryHandler(log, metricsClient, tracerProvider),
			FetchReadiness: queries.NewFetchReadinessQueryHandler(backends.Dependencies, log, metricsClient, tracerProvider),
		},
	}
}
