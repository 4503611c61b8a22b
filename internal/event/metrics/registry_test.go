package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func scrape(t *testing.T, h http.Handler, path string) string {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRegistryRecords(t *testing.T) {
	r := NewRegistry()

	r.RecordPublish("tasks", 3*time.Millisecond, nil)
	r.RecordPublish("tasks", time.Millisecond, errors.New("connection refused"))
	r.RecordSubscribe("tasks", nil)
	r.RecordReceive("tasks", errors.New("EOF"))
	r.SetConsumerState("tasks", 2)
	r.RecordDispatch("task.created", "handled", time.Millisecond)
	r.RecordDispatch("", "malformed", time.Millisecond)
	r.RecordDatabaseOperation("insert", time.Millisecond, nil)
	r.SetSystemInfo("taskflow-notifier", "1.0.0")

	body := scrape(t, r.Handler(), "/metrics")

	assert.Contains(t, body, `taskflow_producer_publish_total{channel="tasks",status="success"} 1`)
	assert.Contains(t, body, `taskflow_producer_publish_total{channel="tasks",status="error"} 1`)
	assert.Contains(t, body, `taskflow_consumer_subscribe_total{channel="tasks",status="success"} 1`)
	assert.Contains(t, body, `taskflow_consumer_receive_total{channel="tasks",status="error"} 1`)
	assert.Contains(t, body, `taskflow_consumer_state{channel="tasks"} 2`)
	assert.Contains(t, body, `taskflow_consumer_dispatch_total{event_type="task.created",outcome="handled"} 1`)
	assert.Contains(t, body, `taskflow_consumer_dispatch_total{event_type="unknown",outcome="malformed"} 1`)
	assert.Contains(t, body, `taskflow_database_operation_total{operation="insert",status="success"} 1`)
	assert.Contains(t, body, `taskflow_system_info{service="taskflow-notifier",version="1.0.0"} 1`)
}

func TestServerEndpoints(t *testing.T) {
	s := NewServer(ServerConfig{Port: 0, Timeout: time.Second}, NewRegistry(), zap.NewNop(), "taskflow-api")

	assert.JSONEq(t, `{"status":"healthy","service":"taskflow-api"}`, scrape(t, s.Handler(), "/health"))
	assert.JSONEq(t, `{"status":"ready","service":"taskflow-api"}`, scrape(t, s.Handler(), "/ready"))
	assert.Contains(t, scrape(t, s.Handler(), "/metrics"), "taskflow_start_time_seconds")
}

func TestServerReadiness(t *testing.T) {
	notReady := errors.New("consumer connecting")
	s := NewServer(ServerConfig{Timeout: time.Second}, NewRegistry(), zap.NewNop(), "taskflow-notifier",
		WithReadiness(func() error { return notReady }),
	)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not ready","service":"taskflow-notifier","reason":"consumer connecting"}`, rec.Body.String())

	notReady = nil
	assert.JSONEq(t, `{"status":"ready","service":"taskflow-notifier"}`, scrape(t, s.Handler(), "/ready"))
}

func TestServerStartReportsBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	s := NewServer(ServerConfig{Port: port, Timeout: time.Second}, NewRegistry(), zap.NewNop(), "taskflow-api")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, s.Start(ctx))
}

func TestServerStopsOnCancel(t *testing.T) {
	s := NewServer(ServerConfig{Port: 0, Timeout: time.Second}, NewRegistry(), zap.NewNop(), "taskflow-api")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestServerConfigWithDefaultPort(t *testing.T) {
	assert.Equal(t, 9091, ServerConfig{}.WithDefaultPort(9091).Port)
	assert.Equal(t, 9200, ServerConfig{Port: 9200}.WithDefaultPort(9091).Port)
}
