// Package redis implements event.Broker on Redis pub/sub.
package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"taskflow/internal/event"
	"taskflow/internal/validator"
)

// Config holds the Redis connection settings.
type Config struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
}

// NewClient builds a go-redis client. No connection is opened until the
// first command. Command retries are disabled: a publish whose reply was lost
// may already have been delivered, and resending it would deliver it twice.
func NewClient(config Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:       net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Password:   config.Password,
		DB:         config.DB,
		PoolSize:   config.PoolSize,
		MaxRetries: -1,
	})
}

// Broker publishes and subscribes through a shared go-redis client. The
// client is owned by the caller and is safe for concurrent use.
type Broker struct {
	client goredis.UniversalClient
}

// New wraps client as an event.Broker.
func New(client goredis.UniversalClient) (*Broker, error) {
	if err := validator.Validate("redis broker", client); err != nil {
		return nil, fmt.Errorf("failed to validate redis broker deps: %w", err)
	}

	return &Broker{client: client}, nil
}

// Publish implements event.Broker.Publish.
func (b *Broker) Publish(ctx context.Context, channel string, msg []byte) error {
	if err := b.client.Publish(ctx, channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis channel %s: %w", channel, err)
	}

	return nil
}

// Subscribe implements event.Broker.Subscribe. It waits for the server's
// subscription confirmation so an unreachable broker fails here rather than
// on the first Receive.
func (b *Broker) Subscribe(ctx context.Context, channel string) (event.Subscription, error) {
	ps := b.client.Subscribe(ctx, channel)

	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to redis channel %s: %w", channel, err)
	}

	return &subscription{ps: ps}, nil
}

// Close closes the underlying client.
func (b *Broker) Close() error {
	return b.client.Close()
}

type subscription struct {
	ps *goredis.PubSub
}

// Receive implements event.Subscription.Receive. Control frames such as
// pongs and subscription confirmations are skipped by go-redis.
func (s *subscription) Receive(ctx context.Context) ([]byte, error) {
	msg, err := s.ps.ReceiveMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis subscription receive: %w", err)
	}

	return []byte(msg.Payload), nil
}

// Close implements event.Subscription.Close.
func (s *subscription) Close() error {
	return s.ps.Close()
}
