package consumer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"taskflow/internal/event"
	"taskflow/internal/validator"
)

// Consumer keeps one subscription open on a channel and hands every message
// to a Dispatcher, one at a time. It reconnects after any connection error
// and only stops when its context is cancelled.
type Consumer struct {
	broker     event.Broker
	dispatcher Dispatcher
	logger     *zap.Logger
	channel    string
	backoff    backoff.BackOff
	onState    func(State)

	state atomic.Int32
}

// Option customizes a Consumer.
type Option func(*Consumer)

// WithBackOff replaces the default constant reconnect delay.
func WithBackOff(b backoff.BackOff) Option {
	return func(c *Consumer) {
		c.backoff = b
	}
}

// WithStateHook registers a function called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(c *Consumer) {
		c.onState = fn
	}
}

func NewConsumer(broker event.Broker, dispatcher Dispatcher, logger *zap.Logger, channel string, opts ...Option) (*Consumer, error) {
	c := Consumer{
		broker:     broker,
		dispatcher: dispatcher,
		logger:     logger,
		channel:    channel,
		backoff:    backoff.NewConstantBackOff(DefaultReconnectDelay),
		onState:    func(State) {},
	}

	for _, opt := range opts {
		opt(&c)
	}

	if err := validator.Validate("consumer", c.broker, c.dispatcher, c.logger, c.channel, c.backoff, c.onState); err != nil {
		return nil, fmt.Errorf("failed to validate consumer deps: %w", err)
	}

	c.logger = c.logger.Named("consumer").With(zap.String("channel", channel))

	return &c, nil
}

// State reports the current connection state.
func (c *Consumer) State() State {
	return State(c.state.Load())
}

// Ready returns nil only while the consumer holds a live subscription.
func (c *Consumer) Ready() error {
	if s := c.State(); s != StateSubscribed {
		return fmt.Errorf("consumer is %s", s)
	}
	return nil
}

// Run drives the DISCONNECTED -> CONNECTING -> SUBSCRIBED loop until ctx is
// cancelled, and then returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("starting consumer")
	c.setState(StateDisconnected)

	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info("consumer stopped")
			return err
		}

		c.setState(StateConnecting)
		sub, err := c.broker.Subscribe(ctx, c.channel)
		if err != nil {
			c.setState(StateDisconnected)
			if err := c.wait(ctx, "could not subscribe", err); err != nil {
				return err
			}
			continue
		}

		c.backoff.Reset()
		c.setState(StateSubscribed)
		c.logger.Info("subscribed, waiting for events")

		err = c.consume(ctx, sub)

		if cerr := sub.Close(); cerr != nil {
			c.logger.Debug("failed to close subscription", zap.Error(cerr))
		}
		c.setState(StateDisconnected)

		if err := c.wait(ctx, "broker connection lost", err); err != nil {
			return err
		}
	}
}

// consume blocks on the subscription and dispatches messages until receive
// fails. Messages are processed strictly in arrival order.
func (c *Consumer) consume(ctx context.Context, sub event.Subscription) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := sub.Receive(ctx)
		if err != nil {
			return err
		}

		c.dispatcher.Process(ctx, msg)
	}
}

// wait logs cause and sleeps one backoff interval. It returns ctx.Err() if
// the context ends first or was the cause.
func (c *Consumer) wait(ctx context.Context, msg string, cause error) error {
	if err := ctx.Err(); err != nil {
		c.logger.Info("consumer stopped")
		return err
	}

	delay := c.backoff.NextBackOff()
	if delay < 0 {
		delay = DefaultReconnectDelay
	}

	c.logger.Error(msg+", retrying", zap.Error(cause), zap.Duration("retryIn", delay))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.logger.Info("consumer stopped")
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Consumer) setState(s State) {
	c.state.Store(int32(s))
	c.logger.Debug("consumer state", zap.Stringer("state", s))
	c.onState(s)
}
