package event

import "context"

// Broker is the publish/subscribe transport shared by producers and consumers.
// No delivery guarantee is assumed beyond at-most-once, in-order delivery to
// currently connected subscribers.
type Broker interface {
	// Publish sends a message on a channel. It returns an error when the
	// broker cannot be reached or the connection drops mid-call.
	Publish(ctx context.Context, channel string, msg []byte) error

	// Subscribe opens a subscription on a channel. It returns once the
	// broker has confirmed the subscription.
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription is a live stream of messages from one channel.
type Subscription interface {
	// Receive blocks until the next message arrives, the context is done,
	// or the connection drops.
	Receive(ctx context.Context) ([]byte, error)

	// Close releases the subscription. It is safe to call more than once.
	Close() error
}
