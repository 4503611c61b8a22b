// Package memory provides an in-process event.Broker backed by Go channels.
// It is suitable for single-process deployments and tests. Delivery is
// at-most-once: a subscriber whose buffer is full misses the message.
package memory

import (
	"context"
	"errors"
	"sync"

	"taskflow/internal/event"
)

// ErrClosed is returned once the broker or a subscription has been closed.
var ErrClosed = errors.New("memory broker: closed")

const defaultBuffer = 256

// Broker fans published messages out to every live subscription of a channel.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	buffer int
	closed bool
}

// New creates a Broker. buffer is the per-subscription queue length; values
// below one use the default.
func New(buffer int) *Broker {
	if buffer < 1 {
		buffer = defaultBuffer
	}

	return &Broker{
		subs:   make(map[string]map[*subscription]struct{}),
		buffer: buffer,
	}
}

// Publish implements event.Broker.Publish.
func (b *Broker) Publish(ctx context.Context, channel string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	cp := make([]byte, len(msg))
	copy(cp, msg)

	for s := range b.subs[channel] {
		select {
		case s.msgs <- cp:
		default:
			// subscriber is behind; drop
		}
	}

	return nil
}

// Subscribe implements event.Broker.Subscribe.
func (b *Broker) Subscribe(ctx context.Context, channel string) (event.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	s := &subscription{
		broker:  b,
		channel: channel,
		msgs:    make(chan []byte, b.buffer),
		done:    make(chan struct{}),
	}
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*subscription]struct{})
	}
	b.subs[channel][s] = struct{}{}

	return s, nil
}

// Subscribers returns the number of live subscriptions on channel.
func (b *Broker) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs[channel])
}

// Close ends every subscription and rejects further use.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[string]map[*subscription]struct{})
	b.mu.Unlock()

	for _, set := range subs {
		for s := range set {
			s.finish()
		}
	}

	return nil
}

func (b *Broker) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs[s.channel], s)
	if len(b.subs[s.channel]) == 0 {
		delete(b.subs, s.channel)
	}
}

type subscription struct {
	broker  *Broker
	channel string
	msgs    chan []byte
	done    chan struct{}
	once    sync.Once
}

// Receive implements event.Subscription.Receive.
func (s *subscription) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-s.msgs:
		return msg, nil
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements event.Subscription.Close.
func (s *subscription) Close() error {
	s.broker.remove(s)
	s.finish()
	return nil
}

func (s *subscription) finish() {
	s.once.Do(func() { close(s.done) })
}
