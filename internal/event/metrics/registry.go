package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry encapsulates all metrics and provides a clean interface
// for recording metrics without global state
type Registry struct {
	registry *prometheus.Registry

	// Producer metrics
	publishTotal    *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec

	// Consumer metrics
	subscribeTotal *prometheus.CounterVec
	receiveTotal   *prometheus.CounterVec
	consumerState  *prometheus.GaugeVec

	// Dispatch metrics
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec

	// Task store metrics
	databaseOperationTotal    *prometheus.CounterVec
	databaseOperationDuration *prometheus.HistogramVec

	// System health metrics
	systemInfo *prometheus.GaugeVec
	startTime  prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()

	r := &Registry{
		registry: registry,

		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskflow_producer_publish_total",
				Help: "Total number of publish attempts",
			},
			[]string{"channel", "status"}, // status: success, error
		),

		publishDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskflow_producer_publish_duration_seconds",
				Help:    "Time spent publishing a single event",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"channel"},
		),

		subscribeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskflow_consumer_subscribe_total",
				Help: "Total number of subscribe attempts",
			},
			[]string{"channel", "status"},
		),

		receiveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskflow_consumer_receive_total",
				Help: "Total number of receive results, including connection drops",
			},
			[]string{"channel", "status"},
		),

		consumerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "taskflow_consumer_state",
				Help: "Current consumer connection state (0 disconnected, 1 connecting, 2 subscribed)",
			},
			[]string{"channel"},
		),

		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskflow_consumer_dispatch_total",
				Help: "Total number of dispatched messages by outcome",
			},
			[]string{"event_type", "outcome"}, // outcome: handled, unhandled, malformed, failed
		),

		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskflow_consumer_dispatch_duration_seconds",
				Help:    "Time spent decoding and handling a message",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),

		databaseOperationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskflow_database_operation_total",
				Help: "Total number of task store operations",
			},
			[]string{"operation", "status"}, // operation: insert, get, list, update, delete
		),

		databaseOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskflow_database_operation_duration_seconds",
				Help:    "Time spent on task store operations",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"operation"},
		),

		systemInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "taskflow_system_info",
				Help: "System information (value is always 1, labels contain info)",
			},
			[]string{"service", "version"},
		),

		startTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "taskflow_start_time_seconds",
				Help: "Unix timestamp when the application started",
			},
		),
	}

	// add default Go metrics (memory, GC, goroutines, etc.)
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	registry.MustRegister(
		r.publishTotal,
		r.publishDuration,
		r.subscribeTotal,
		r.receiveTotal,
		r.consumerState,
		r.dispatchTotal,
		r.dispatchDuration,
		r.databaseOperationTotal,
		r.databaseOperationDuration,
		r.systemInfo,
		r.startTime,
	)

	r.startTime.SetToCurrentTime()

	return r
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          r.registry,
	})
}

// RecordPublish records a single publish attempt
func (r *Registry) RecordPublish(channel string, duration time.Duration, err error) {
	r.publishTotal.WithLabelValues(channel, status(err)).Inc()
	r.publishDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordSubscribe records a subscribe attempt
func (r *Registry) RecordSubscribe(channel string, err error) {
	r.subscribeTotal.WithLabelValues(channel, status(err)).Inc()
}

// RecordReceive records the result of a blocking receive
func (r *Registry) RecordReceive(channel string, err error) {
	r.receiveTotal.WithLabelValues(channel, status(err)).Inc()
}

// SetConsumerState exports the consumer connection state
func (r *Registry) SetConsumerState(channel string, state int) {
	r.consumerState.WithLabelValues(channel).Set(float64(state))
}

// RecordDispatch records the outcome of processing one message
func (r *Registry) RecordDispatch(eventType, outcome string, duration time.Duration) {
	if eventType == "" {
		eventType = "unknown"
	}

	r.dispatchTotal.WithLabelValues(eventType, outcome).Inc()
	r.dispatchDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

// RecordDatabaseOperation records a task store operation
func (r *Registry) RecordDatabaseOperation(operation string, duration time.Duration, err error) {
	r.databaseOperationTotal.WithLabelValues(operation, status(err)).Inc()
	r.databaseOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetSystemInfo sets system information metrics
func (r *Registry) SetSystemInfo(service, version string) {
	r.systemInfo.WithLabelValues(service, version).Set(1)
}

func status(err error) string {
	if err != nil {
		return "error"
	}

	return "success"
}
