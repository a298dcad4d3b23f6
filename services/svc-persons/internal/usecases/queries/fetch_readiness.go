package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/architeacher/persons/pkg/decorator"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics"
	"github.com/architeacher/persons/services/svc-persons/internal/config"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

type (
	FetchReadinessQuery struct{}

	ReadinessResult struct {
		Status       string                            `json:"status"`
		Version      string                            `json:"version"`
		Uptime       string                            `json:"uptime"`
		Dependencies map[string]ports.DependencyStatus `json:"dependencies"`
	}

	FetchReadinessQueryHandler = decorator.QueryHandler[FetchReadinessQuery, *ReadinessResult]

	fetchReadinessQueryHandler struct {
		checkers  []ports.DependencyChecker
		startTime time.Time
	}
)

func NewFetchReadinessQueryHandler(
	checkers []ports.DependencyChecker,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchReadinessQueryHandler {
	return decorator.ApplyQueryDecorators[FetchReadinessQuery, *ReadinessResult](
		fetchReadinessQueryHandler{
			checkers:  checkers,
			startTime: time.Now(),
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

// Execute pings every dependency. A failing dependency turns the result DOWN
// but is not an error of the query itself.
func (h fetchReadinessQueryHandler) Execute(ctx context.Context, _ FetchReadinessQuery) (*ReadinessResult, error) {
	result := &ReadinessResult{
		Status:       StatusUp,
		Version:      config.ServiceVersion,
		Uptime:       time.Since(h.startTime).String(),
		Dependencies: make(map[string]ports.DependencyStatus, len(h.checkers)),
	}

	for _, checker := range h.checkers {
		start := time.Now()
		err := checker.Ping(ctx)

		status := ports.DependencyStatus{
			Healthy: err == nil,
			Latency: fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
		}

		if err != nil {
			status.Message = err.Error()
			result.Status = StatusDown
		}

		result.Dependencies[checker.Name()] = status
	}

	return result, nil
}

// Ready reports whether every dependency answered.
func (r *ReadinessResult) Ready() bool {
	return r != nil && r.Status == StatusUp
}
