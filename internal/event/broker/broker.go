// Package broker selects and instruments the event.Broker implementation.
package broker

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"taskflow/internal/event"
	"taskflow/internal/event/broker/kafka"
	"taskflow/internal/event/broker/memory"
	"taskflow/internal/event/broker/redis"
)

// Kind names a broker implementation.
type Kind string

const (
	KindRedis  Kind = "redis"
	KindKafka  Kind = "kafka"
	KindMemory Kind = "memory"
)

// Config selects the broker and carries each implementation's settings.
type Config struct {
	Kind  Kind `env:"BROKER" envDefault:"redis"`
	Redis redis.Config
	Kafka kafka.Config
}

// Closer is an event.Broker that owns a connection and must be closed once
// at shutdown.
type Closer interface {
	event.Broker
	io.Closer
}

// Open builds the broker named by config.Kind. The returned broker owns its
// client; the caller closes it exactly once. Redis and Kafka connect lazily,
// so a nil error does not mean the broker is reachable.
func Open(config Config, logger *zap.Logger) (Closer, error) {
	var (
		b   Closer
		err error
	)

	switch config.Kind {
	case KindRedis, "":
		b, err = redis.New(redis.NewClient(config.Redis))
		if err != nil {
			return nil, fmt.Errorf("failed to create redis broker: %w", err)
		}
	case KindKafka:
		b, err = kafka.New(config.Kafka)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka broker: %w", err)
		}
	case KindMemory:
		logger.Warn("using in-process memory broker, events do not reach other processes")
		b = memory.New(0)
	default:
		return nil, fmt.Errorf("unknown broker kind %q", config.Kind)
	}

	logger.Info("broker configured", zap.String("broker", string(config.Kind)))

	return b, nil
}
