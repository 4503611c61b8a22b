package consumer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"taskflow/internal/event"
	"taskflow/internal/event/metrics"
	"taskflow/internal/event/tracing"
)

func TestMetricsDispatcher(t *testing.T) {
	registry := metrics.NewRegistry()
	router, err := NewRouter(&recordingHandler{}, zap.NewNop())
	require.NoError(t, err)
	d := NewMetricsDispatcher(router, registry)

	ctx := context.Background()
	d.Process(ctx, encoded(t, event.TaskCreated, event.Payload{"id": "1"}))
	d.Process(ctx, encoded(t, event.Type("task.archived"), event.Payload{}))
	d.Process(ctx, encoded(t, event.Type("task.archived.v2"), event.Payload{}))
	d.Process(ctx, []byte("garbage"))

	StateGauge(registry, "tasks")(StateSubscribed)

	rec := httptest.NewRecorder()
	registry.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `taskflow_consumer_dispatch_total{event_type="task.created",outcome="handled"} 1`)
	assert.Contains(t, string(body), `taskflow_consumer_dispatch_total{event_type="unrecognized",outcome="unhandled"} 2`)
	assert.NotContains(t, string(body), `task.archived`)
	assert.Contains(t, string(body), `taskflow_consumer_dispatch_total{event_type="unknown",outcome="malformed"} 1`)
	assert.Contains(t, string(body), `taskflow_consumer_state{channel="tasks"} 2`)
}

func TestTracedDispatcher(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := tracing.NewTracerFromProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)), "test")

	router, err := NewRouter(&recordingHandler{}, zap.NewNop())
	require.NoError(t, err)
	d := NewTracedDispatcher(router, tracer)

	ctx := context.Background()
	d.Process(ctx, encoded(t, event.TaskCreated, event.Payload{"id": "1"}))
	d.Process(ctx, []byte("garbage"))

	ended := sr.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "consumer.process", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
}
