package event

import "context"

// Handler reacts to recognized lifecycle events. Each method receives the
// payload of one envelope. Handlers must honor ctx and must not block
// indefinitely, since consumption is sequential.
type Handler interface {
	TaskCreated(ctx context.Context, payload Payload) error
	TaskUpdated(ctx context.Context, payload Payload) error
	TaskCompleted(ctx context.Context, payload Payload) error
}
