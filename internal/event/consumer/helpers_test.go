package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskflow/internal/event"
	"taskflow/internal/event/broker/memory"
)

type call struct {
	typ     event.Type
	payload event.Payload
}

// recordingHandler records every invocation and can be told to fail or panic.
type recordingHandler struct {
	mu       sync.Mutex
	calls    []call
	err      error
	panicMsg string
	block    bool
}

func (h *recordingHandler) record(ctx context.Context, t event.Type, p event.Payload) error {
	h.mu.Lock()
	h.calls = append(h.calls, call{typ: t, payload: p})
	err, panicMsg, block := h.err, h.panicMsg, h.block
	h.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (h *recordingHandler) TaskCreated(ctx context.Context, p event.Payload) error {
	return h.record(ctx, event.TaskCreated, p)
}

func (h *recordingHandler) TaskUpdated(ctx context.Context, p event.Payload) error {
	return h.record(ctx, event.TaskUpdated, p)
}

func (h *recordingHandler) TaskCompleted(ctx context.Context, p event.Payload) error {
	return h.record(ctx, event.TaskCompleted, p)
}

func (h *recordingHandler) Calls() []call {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]call, len(h.calls))
	copy(out, h.calls)
	return out
}

var errRefused = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

// flakyBroker wraps the memory broker, refuses the first failFirst subscribe
// attempts, and can drop every live subscription to simulate a lost connection.
type flakyBroker struct {
	*memory.Broker

	mu         sync.Mutex
	failFirst  int
	attempts   int
	subscribed []time.Time
	live       []event.Subscription
}

func newFlakyBroker(failFirst int) *flakyBroker {
	return &flakyBroker{Broker: memory.New(16), failFirst: failFirst}
}

func (b *flakyBroker) Subscribe(ctx context.Context, channel string) (event.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attempts++
	if b.attempts <= b.failFirst {
		return nil, errRefused
	}

	sub, err := b.Broker.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}
	b.subscribed = append(b.subscribed, time.Now())
	b.live = append(b.live, sub)
	return sub, nil
}

func (b *flakyBroker) drop() {
	b.mu.Lock()
	live := b.live
	b.live = nil
	b.mu.Unlock()

	for _, s := range live {
		_ = s.Close()
	}
}

func (b *flakyBroker) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

func (b *flakyBroker) SubscribedAt() []time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]time.Time, len(b.subscribed))
	copy(out, b.subscribed)
	return out
}

func encoded(t *testing.T, typ event.Type, payload event.Payload) []byte {
	t.Helper()
	b, err := event.Encode(event.Build(typ, payload))
	require.NoError(t, err)
	return b
}
