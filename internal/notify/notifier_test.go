package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"taskflow/internal/event"
)

func newObservedNotifier(t *testing.T) (*Notifier, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	n, err := NewNotifier(zap.New(core))
	require.NoError(t, err)
	n.now = func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) }
	return n, logs
}

func TestNewNotifierRequiresLogger(t *testing.T) {
	_, err := NewNotifier(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required deps")
}

func TestTaskCreated(t *testing.T) {
	n, logs := newObservedNotifier(t)

	err := n.TaskCreated(context.Background(), event.Payload{
		"id": "t1", "title": "Buy milk", "priority": "high", "category": "shopping",
	})
	require.NoError(t, err)

	created := logs.FilterMessage("new task created").AllUntimed()
	require.Len(t, created, 1)
	fields := created[0].ContextMap()
	assert.Equal(t, "t1", fields["taskId"])
	assert.Equal(t, "Buy milk", fields["title"])
	assert.Equal(t, "high", fields["priority"])
	assert.Equal(t, "shopping", fields["category"])

	assert.Equal(t, 1, logs.FilterMessage("notification sent").Len())
}

func TestTaskUpdated(t *testing.T) {
	n, logs := newObservedNotifier(t)

	require.NoError(t, n.TaskUpdated(context.Background(), event.Payload{"id": "t1", "title": "Buy milk", "status": "in_progress"}))

	updated := logs.FilterMessage("task updated").AllUntimed()
	require.Len(t, updated, 1)
	assert.Equal(t, "in_progress", updated[0].ContextMap()["status"])
}

func TestTaskCompleted(t *testing.T) {
	n, logs := newObservedNotifier(t)

	require.NoError(t, n.TaskCompleted(context.Background(), event.Payload{"id": "t1", "title": "Buy milk"}))

	completed := logs.FilterMessage("task completed").AllUntimed()
	require.Len(t, completed, 1)
	assert.Equal(t, time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC), completed[0].ContextMap()["completedAt"])
	assert.Equal(t, 1, logs.FilterField(zap.String("kind", "congratulations")).Len())
}

func TestMissingTaskID(t *testing.T) {
	n, logs := newObservedNotifier(t)
	ctx := context.Background()

	assert.ErrorIs(t, n.TaskCreated(ctx, event.Payload{"title": "x"}), ErrInvalidPayload)
	assert.ErrorIs(t, n.TaskUpdated(ctx, event.Payload{}), ErrInvalidPayload)
	assert.ErrorIs(t, n.TaskCompleted(ctx, event.Payload{"id": 7}), ErrInvalidPayload)
	assert.Zero(t, logs.Len())
}
