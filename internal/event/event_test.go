package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("copies type and payload verbatim", func(t *testing.T) {
		payload := Payload{"id": "42", "title": "Buy milk", "nested": map[string]any{"a": 1}}

		e := Build(TaskCreated, payload)

		assert.Equal(t, TaskCreated, e.Type)
		assert.Equal(t, payload, e.Payload)
		assert.Equal(t, ProducerName, e.Producer)
		assert.NotEmpty(t, e.ID)
	})

	t.Run("assigns unique ids", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 1000; i++ {
			e := Build(TaskUpdated, Payload{"i": i})
			_, dup := seen[e.ID]
			require.False(t, dup, "duplicate event id %s", e.ID)
			seen[e.ID] = struct{}{}
		}
	})

	t.Run("timestamp is UTC and current", func(t *testing.T) {
		before := time.Now().UTC()
		e := Build(TaskCompleted, Payload{})
		after := time.Now().UTC()

		assert.Equal(t, time.UTC, e.Timestamp.Location())
		assert.False(t, e.Timestamp.Before(before.Add(-time.Second)))
		assert.False(t, e.Timestamp.After(after.Add(time.Second)))
	})

	t.Run("nil payload becomes empty object", func(t *testing.T) {
		e := Build(TaskCreated, nil)
		assert.NotNil(t, e.Payload)
		assert.Empty(t, e.Payload)
	})
}

func TestTypeKnown(t *testing.T) {
	assert.True(t, TaskCreated.Known())
	assert.True(t, TaskUpdated.Known())
	assert.True(t, TaskCompleted.Known())
	assert.False(t, Type("task.archived").Known())
	assert.False(t, Type("").Known())
}

func TestPayloadString(t *testing.T) {
	p := Payload{"title": "x", "n": 3}
	assert.Equal(t, "x", p.String("title"))
	assert.Equal(t, "", p.String("n"))
	assert.Equal(t, "", p.String("missing"))
}
