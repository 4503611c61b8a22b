// Package kafka implements event.Broker on Apache Kafka via segmentio/kafka-go.
// A channel maps to a topic. Subscriptions read partition 0 starting at the
// newest offset, so a subscriber only sees messages published while it is
// connected, matching broadcast pub/sub semantics.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"taskflow/internal/event"
)

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("kafka broker: closed")

// Config holds the Kafka connection settings.
type Config struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"10ms"`
	MaxWait      time.Duration `env:"KAFKA_MAX_WAIT" envDefault:"500ms"`
}

// Broker shares one writer across all publishes and opens a reader per
// subscription.
type Broker struct {
	config Config
	writer *kafkago.Writer

	mu     sync.Mutex
	closed bool
}

// New creates a Broker. No connection is made until the first publish or
// subscribe. The writer makes a single attempt per publish so an event is
// never resent.
func New(config Config) (*Broker, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker address is required")
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(config.Brokers...),
		Balancer:               &kafkago.LeastBytes{},
		BatchTimeout:           config.BatchTimeout,
		MaxAttempts:            1,
		AllowAutoTopicCreation: true,
	}

	return &Broker{config: config, writer: writer}, nil
}

// Publish implements event.Broker.Publish.
func (b *Broker) Publish(ctx context.Context, channel string, msg []byte) error {
	if b.isClosed() {
		return ErrClosed
	}

	if err := b.writer.WriteMessages(ctx, kafkago.Message{Topic: channel, Value: msg}); err != nil {
		return fmt.Errorf("write to kafka topic %s: %w", channel, err)
	}

	return nil
}

// Subscribe implements event.Broker.Subscribe. The leader connection is
// dialed up front so an unreachable cluster fails here.
func (b *Broker) Subscribe(ctx context.Context, channel string) (event.Subscription, error) {
	if b.isClosed() {
		return nil, ErrClosed
	}

	conn, err := kafkago.DialLeader(ctx, "tcp", b.config.Brokers[0], channel, 0)
	if err != nil {
		return nil, fmt.Errorf("dial kafka leader for topic %s: %w", channel, err)
	}
	_ = conn.Close()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   b.config.Brokers,
		Topic:     channel,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6, // 10MB
		MaxWait:   b.config.MaxWait,
	})

	if err := reader.SetOffset(kafkago.LastOffset); err != nil {
		_ = reader.Close()
		return nil, fmt.Errorf("set kafka offset for topic %s: %w", channel, err)
	}

	return &subscription{reader: reader}, nil
}

// Close shuts down the writer. Open subscriptions are closed by their owners.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	return b.writer.Close()
}

func (b *Broker) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

type subscription struct {
	reader *kafkago.Reader
	once   sync.Once
	err    error
}

// Receive implements event.Subscription.Receive.
func (s *subscription) Receive(ctx context.Context) ([]byte, error) {
	msg, err := s.reader.ReadMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("kafka subscription receive: %w", err)
	}

	return msg.Value, nil
}

// Close implements event.Subscription.Close.
func (s *subscription) Close() error {
	s.once.Do(func() { s.err = s.reader.Close() })
	return s.err
}
