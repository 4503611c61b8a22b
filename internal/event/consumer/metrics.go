package consumer

import (
	"context"
	"time"

	"taskflow/internal/event"
	"taskflow/internal/event/metrics"
)

// MetricsDispatcher wraps a Dispatcher with metrics collection
type MetricsDispatcher struct {
	dispatcher Dispatcher
	registry   *metrics.Registry
}

// NewMetricsDispatcher creates a new instrumented dispatcher
func NewMetricsDispatcher(dispatcher Dispatcher, registry *metrics.Registry) Dispatcher {
	return &MetricsDispatcher{
		dispatcher: dispatcher,
		registry:   registry,
	}
}

// Process implements Dispatcher.Process with metrics collection
func (d *MetricsDispatcher) Process(ctx context.Context, raw []byte) Result {
	start := time.Now()

	res := d.dispatcher.Process(ctx, raw)
	duration := time.Since(start)

	d.registry.RecordDispatch(typeLabel(res.Type), res.Outcome.String(), duration)

	return res
}

// typeLabel keeps the event_type label bounded: types outside the recognized
// set come from producers and must not mint new series.
func typeLabel(t event.Type) string {
	if t == "" || t.Known() {
		return t.String()
	}
	return "unrecognized"
}

// StateGauge returns a state hook that exports transitions to the registry.
func StateGauge(registry *metrics.Registry, channel string) func(State) {
	return func(s State) {
		registry.SetConsumerState(channel, int(s))
	}
}
