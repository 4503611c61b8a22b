package broker

import (
	"context"
	"time"

	"taskflow/internal/event"
	"taskflow/internal/event/metrics"
)

// MetricsBroker wraps an event.Broker with metrics collection
type MetricsBroker struct {
	broker   event.Broker
	registry *metrics.Registry
}

// NewMetricsBroker creates a new instrumented broker
func NewMetricsBroker(broker event.Broker, registry *metrics.Registry) event.Broker {
	return &MetricsBroker{
		broker:   broker,
		registry: registry,
	}
}

// Publish implements event.Broker.Publish with metrics collection
func (b *MetricsBroker) Publish(ctx context.Context, channel string, msg []byte) error {
	start := time.Now()

	err := b.broker.Publish(ctx, channel, msg)
	duration := time.Since(start)

	b.registry.RecordPublish(channel, duration, err)

	return err
}

// Subscribe implements event.Broker.Subscribe with metrics collection
func (b *MetricsBroker) Subscribe(ctx context.Context, channel string) (event.Subscription, error) {
	sub, err := b.broker.Subscribe(ctx, channel)
	b.registry.RecordSubscribe(channel, err)
	if err != nil {
		return nil, err
	}

	return &metricsSubscription{sub: sub, channel: channel, registry: b.registry}, nil
}

type metricsSubscription struct {
	sub      event.Subscription
	channel  string
	registry *metrics.Registry
}

func (s *metricsSubscription) Receive(ctx context.Context) ([]byte, error) {
	msg, err := s.sub.Receive(ctx)

	// a cancelled receive is a shutdown, not a dropped connection
	if ctx.Err() == nil {
		s.registry.RecordReceive(s.channel, err)
	}

	return msg, err
}

func (s *metricsSubscription) Close() error {
	return s.sub.Close()
}
