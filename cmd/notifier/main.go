package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskflow/internal/event/broker"
	"taskflow/internal/event/consumer"
	"taskflow/internal/event/metrics"
	"taskflow/internal/event/tracing"
	"taskflow/internal/logging"
	"taskflow/internal/notify"
)

const (
	serviceName = "taskflow-notifier"
	version     = "1.0.0"
)

type Config struct {
	Channel        string        `env:"EVENTS_CHANNEL" envDefault:"tasks"`
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"10s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	Broker  broker.Config
	Backoff consumer.BackoffConfig
	Metrics metrics.ServerConfig
	Tracing tracing.Config
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
		logger.Fatal("notifier stopped with error", zap.Error(err))
	}
}

const defaultMetricsPort = 9091

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = serviceName
	}
	cfg.Metrics = cfg.Metrics.WithDefaultPort(defaultMetricsPort)

	return cfg, nil
}

func run(cfg Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsRegistry := metrics.NewRegistry()
	metricsRegistry.SetSystemInfo(serviceName, version)

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

	notifier, err := notify.NewNotifier(logger)
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}
	router, err := consumer.NewRouter(notifier, logger, consumer.WithHandlerTimeout(cfg.HandlerTimeout))
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}
	dispatcher := consumer.NewTracedDispatcher(consumer.NewMetricsDispatcher(router, metricsRegistry), tracer)

	bo, err := consumer.NewBackOff(cfg.Backoff)
	if err != nil {
		return fmt.Errorf("failed to create backoff: %w", err)
	}

	instrumented := broker.NewTracedBroker(broker.NewMetricsBroker(b, metricsRegistry), tracer)
	c, err := consumer.NewConsumer(instrumented, dispatcher, logger, cfg.Channel,
		consumer.WithBackOff(bo),
		consumer.WithStateHook(consumer.StateGauge(metricsRegistry, cfg.Channel)),
	)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	metricsServer := metrics.NewServer(cfg.Metrics, metricsRegistry, logger, serviceName,
		metrics.WithReadiness(c.Ready),
	)

	logger.Info("notification service started", zap.String("channel", cfg.Channel))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metricsServer.Start(gctx)
	})
	g.Go(func() error {
		err := c.Run(gctx)
		if errors.Is(err, context.Canceled) {
			logger.Info("notification service stopped")
			return nil
		}
		return err
	})

	return g.Wait()
}
