package decorator

import (
	"context"
	"fmt"
	"strings"

	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Command any

	CommandHandler[C Command, R any] interface {
		Handle(context.Context, C) (R, error)
	}
)

func ApplyCommandDecorators[C Command, R any](
	handler CommandHandler[C, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CommandHandler[C, R] {
	return commandLoggingDecorator[C, R]{
		base: commandMetricsDecorator[C, R]{
			base: commandTracingDecorator[C, R]{
				base:           handler,
				tracerProvider: tracerProvider,
			},
			client: metricsClient,
		},
		logger: log,
	}
}

// generateActionName returns the bare type name of a command or query,
// e.g. "ListPersonsQuery" for queries.ListPersonsQuery.
func generateActionName(handler any) string {
	name := fmt.Sprintf("%T", handler)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}

	return strings.TrimLeft(name, "*")
}
