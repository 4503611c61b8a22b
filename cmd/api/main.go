package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskflow/internal/api"
	"taskflow/internal/couchbase"
	"taskflow/internal/event/broker"
	"taskflow/internal/event/metrics"
	"taskflow/internal/event/producer"
	"taskflow/internal/event/tracing"
	"taskflow/internal/logging"
	"taskflow/internal/task"
)

type Config struct {
	HTTPPort       int           `env:"HTTP_PORT" envDefault:"8000"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	Channel        string        `env:"EVENTS_CHANNEL" envDefault:"tasks"`
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"2s"`
	Store          string        `env:"STORE" envDefault:"couchbase"` // couchbase, memory
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	Broker    broker.Config
	Couchbase couchbase.Config
	Metrics   metrics.ServerConfig
	Tracing   tracing.Config
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to parse environment variables: %v", err)
	}

	logger, fallback, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	if fallback {
		logger.Warn("invalid log level, defaulting to info", zap.String("level", cfg.LogLevel))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped with error", zap.Error(err))
	}
}

const defaultMetricsPort = 9090

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = api.ServiceName
	}
	cfg.Metrics = cfg.Metrics.WithDefaultPort(defaultMetricsPort)

	return cfg, nil
}

func run(cfg Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsRegistry := metrics.NewRegistry()
	metricsRegistry.SetSystemInfo(api.ServiceName, api.Version)
	metricsServer := metrics.NewServer(cfg.Metrics, metricsRegistry, logger, api.ServiceName)

	tracer, tracingCleanup, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingCleanup(shutdownCtx); err != nil {
			logger.Error("failed to cleanup tracing", zap.Error(err))
		}
	}()

	b, err := broker.Open(cfg.Broker, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("failed to close broker", zap.Error(err))
		}
	}()

	instrumented := broker.NewTracedBroker(broker.NewMetricsBroker(b, metricsRegistry), tracer)
	prod, err := producer.NewProducer(instrumented, logger, cfg.Channel, producer.WithPublishTimeout(cfg.PublishTimeout))
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}

	store, closeStore, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := task.NewService(task.NewMetricsStore(store, metricsRegistry), prod, logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	handler, err := api.NewHandler(svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create api handler: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout * 2,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metricsServer.Start(gctx)
	})
	g.Go(func() error {
		logger.Info("starting api server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newStore(cfg Config, logger *zap.Logger) (task.Store, func(), error) {
	switch cfg.Store {
	case "memory":
		logger.Warn("using in-memory task store, data is lost on restart")
		return task.NewMemoryStore(), func() {}, nil
	case "couchbase":
		cluster, bucket, err := couchbase.Connect(cfg.Couchbase)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Couchbase: %w", err)
		}
		closeCluster := func() {
			if err := cluster.Close(nil); err != nil {
				logger.Error("failed to close couchbase cluster", zap.Error(err))
			}
		}

		store, err := task.NewCouchbaseStore(cluster, bucket, cfg.Couchbase.ScopeName)
		if err != nil {
			closeCluster()
			return nil, nil, fmt.Errorf("failed to create task store: %w", err)
		}
		return store, closeCluster, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
