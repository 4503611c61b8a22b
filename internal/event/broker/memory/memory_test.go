package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerFanOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	b := New(0)
	defer b.Close()

	s1, err := b.Subscribe(ctx, "tasks")
	require.NoError(t, err)
	s2, err := b.Subscribe(ctx, "tasks")
	require.NoError(t, err)
	other, err := b.Subscribe(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "tasks", []byte("one")))
	require.NoError(t, b.Publish(ctx, "tasks", []byte("two")))

	for _, s := range []interface {
		Receive(context.Context) ([]byte, error)
	}{s1, s2} {
		msg, err := s.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "one", string(msg))
		msg, err = s.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "two", string(msg))
	}

	short, cancelShort := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancelShort()
	_, err = other.Receive(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBrokerPublishWithoutSubscribers(t *testing.T) {
	b := New(1)
	assert.NoError(t, b.Publish(context.Background(), "tasks", []byte("lost")))
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	ctx := context.Background()
	b := New(1)

	s, err := b.Subscribe(ctx, "tasks")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "tasks", []byte("kept")))
	require.NoError(t, b.Publish(ctx, "tasks", []byte("dropped")))

	msg, err := s.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kept", string(msg))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = s.Receive(short)
	assert.Error(t, err)
}

func TestSubscriptionClose(t *testing.T) {
	ctx := context.Background()
	b := New(1)

	s, err := b.Subscribe(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Subscribers("tasks"))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 0, b.Subscribers("tasks"))

	_, err = s.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBrokerClose(t *testing.T) {
	ctx := context.Background()
	b := New(1)

	s, err := b.Subscribe(ctx, "tasks")
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err = s.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.Publish(ctx, "tasks", nil), ErrClosed)
	_, err = b.Subscribe(ctx, "tasks")
	assert.ErrorIs(t, err, ErrClosed)
}
