package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/event"
)

func TestBrokerImplementsInterface(t *testing.T) {
	var _ event.Broker = (*Broker)(nil)
}

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestBrokerClosePreventsFurtherUse(t *testing.T) {
	b, err := New(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	ctx := context.Background()
	assert.ErrorIs(t, b.Publish(ctx, "tasks", []byte("x")), ErrClosed)

	_, err = b.Subscribe(ctx, "tasks")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubscribeUnreachable(t *testing.T) {
	b, err := New(Config{Brokers: []string{"127.0.0.1:1"}})
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = b.Subscribe(ctx, "tasks")
	assert.Error(t, err)
}

func TestWriterSendsOnce(t *testing.T) {
	b, err := New(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 1, b.writer.MaxAttempts)
}
