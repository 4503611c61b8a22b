package task

import (
	"context"
	"sync"

	"taskflow/internal/event"
)

type publishedEvent struct {
	typ     event.Type
	payload event.Payload
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, t event.Type, payload event.Payload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{typ: t, payload: payload})
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func ptr[T any](v T) *T {
	return &v
}
