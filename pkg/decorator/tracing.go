package decorator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/architeacher/persons/pkg/decorator"

type (
	commandTracingDecorator[C Command, R any] struct {
		base           CommandHandler[C, R]
		tracerProvider otelTrace.TracerProvider
	}

	queryTracingDecorator[Q Query, R Result] struct {
		base           QueryHandler[Q, R]
		tracerProvider otelTrace.TracerProvider
	}
)

func (d commandTracingDecorator[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	if d.tracerProvider == nil {
		return d.base.Handle(ctx, cmd)
	}

	action := generateActionName(cmd)

	ctx, span := d.tracerProvider.Tracer(tracerName).Start(ctx, "command."+action,
		otelTrace.WithAttributes(attribute.String("cqrs.kind", "command")),
	)
	defer span.End()

	result, err := d.base.Handle(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return result, err
}

func (d queryTracingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	if d.tracerProvider == nil {
		return d.base.Execute(ctx, query)
	}

	action := generateActionName(query)

	ctx, span := d.tracerProvider.Tracer(tracerName).Start(ctx, "query."+action,
		otelTrace.WithAttributes(attribute.String("cqrs.kind", "query")),
	)
	defer span.End()

	result, err := d.base.Execute(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return result, err
}
