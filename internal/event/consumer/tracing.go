package consumer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"taskflow/internal/event/tracing"
)

// TracedDispatcher wraps a Dispatcher with distributed tracing
// Layer order: TracedDispatcher -> MetricsDispatcher -> Router (real thing)
type TracedDispatcher struct {
	dispatcher Dispatcher
	tracer     *tracing.Tracer
}

// NewTracedDispatcher creates a new traced dispatcher that wraps a metrics dispatcher
func NewTracedDispatcher(dispatcher Dispatcher, tracer *tracing.Tracer) Dispatcher {
	return &TracedDispatcher{
		dispatcher: dispatcher,
		tracer:     tracer,
	}
}

// Process implements Dispatcher.Process with distributed tracing
func (d *TracedDispatcher) Process(ctx context.Context, raw []byte) Result {
	ctx, span := d.tracer.StartSpan(ctx, "consumer.process", trace.WithSpanKind(trace.SpanKindConsumer))
	span.SetAttributes(attribute.Int("messaging.message.body.size", len(raw)))

	res := d.dispatcher.Process(ctx, raw)

	span.SetAttributes(d.tracer.EventAttributes(res.EventID, res.Type.String())...)
	span.SetAttributes(attribute.String("taskflow.outcome", res.Outcome.String()))

	d.tracer.End(ctx, span, res.Err)
	return res
}
