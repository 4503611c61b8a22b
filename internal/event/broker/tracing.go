package broker

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"taskflow/internal/event"
	"taskflow/internal/event/tracing"
)

// TracedBroker wraps an event.Broker with distributed tracing
// Layer order: TracedBroker -> MetricsBroker -> Broker (real thing)
type TracedBroker struct {
	broker event.Broker
	tracer *tracing.Tracer
}

// NewTracedBroker creates a new traced broker that wraps a metrics broker
func NewTracedBroker(broker event.Broker, tracer *tracing.Tracer) event.Broker {
	return &TracedBroker{
		broker: broker,
		tracer: tracer,
	}
}

// Publish implements event.Broker.Publish with distributed tracing
func (b *TracedBroker) Publish(ctx context.Context, channel string, msg []byte) error {
	ctx, span := b.tracer.StartSpan(ctx, "broker.publish", trace.WithSpanKind(trace.SpanKindProducer))
	span.SetAttributes(b.tracer.ChannelAttributes(channel)...)
	span.SetAttributes(attribute.Int("messaging.message.body.size", len(msg)))

	err := b.broker.Publish(ctx, channel, msg)

	b.tracer.End(ctx, span, err)
	return err
}

// Subscribe implements event.Broker.Subscribe with distributed tracing.
// Receives are not traced: the consumer opens a span per dispatched message.
func (b *TracedBroker) Subscribe(ctx context.Context, channel string) (event.Subscription, error) {
	ctx, span := b.tracer.StartSpan(ctx, "broker.subscribe")
	span.SetAttributes(b.tracer.ChannelAttributes(channel)...)

	sub, err := b.broker.Subscribe(ctx, channel)

	b.tracer.End(ctx, span, err)
	return sub, err
}
