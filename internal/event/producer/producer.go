package producer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskflow/internal/event"
	"taskflow/internal/validator"
)

// DefaultPublishTimeout bounds a single publish when no option overrides it.
const DefaultPublishTimeout = 2 * time.Second

// Producer builds envelopes and publishes them on a fixed channel.
// Publication is at-most-once: failures are logged and dropped, never retried
// and never returned to the caller.
type Producer struct {
	broker  event.Broker
	logger  *zap.Logger
	channel string
	timeout time.Duration
}

// Option customizes a Producer.
type Option func(*Producer)

// WithPublishTimeout bounds each publish call. Zero disables the bound.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *Producer) {
		p.timeout = d
	}
}

func NewProducer(broker event.Broker, logger *zap.Logger, channel string, opts ...Option) (*Producer, error) {
	p := Producer{
		broker:  broker,
		logger:  logger,
		channel: channel,
		timeout: DefaultPublishTimeout,
	}

	for _, opt := range opts {
		opt(&p)
	}

	if err := validator.Validate("producer", p.broker, p.logger, p.channel); err != nil {
		return nil, fmt.Errorf("failed to validate producer deps: %w", err)
	}

	p.logger = p.logger.Named("producer").With(zap.String("channel", channel))

	return &p, nil
}

// Publish implements event.Publisher. Exactly one log line is written per
// call: info when the broker accepted the event, error otherwise.
func (p *Producer) Publish(ctx context.Context, t event.Type, payload event.Payload) {
	e := event.Build(t, payload)
	logger := p.logger.With(zap.String("eventType", e.Type.String()), zap.String("eventId", e.ID))

	if err := p.send(ctx, e); err != nil {
		logger.Error("event not published", zap.Error(err))
		return
	}

	logger.Info("event published")
}

func (p *Producer) send(ctx context.Context, e event.Envelope) error {
	msg, err := event.Encode(e)
	if err != nil {
		return err
	}

	// the caller's cancellation must not abort a publish it already triggered
	ctx = context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.broker.Publish(ctx, p.channel, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", e.ID, err)
	}

	return nil
}
