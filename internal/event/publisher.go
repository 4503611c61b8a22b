package event

import "context"

// Publisher emits lifecycle events on behalf of the domain service.
// Publishing is best-effort: failures are handled by the implementation and
// never reach the caller.
type Publisher interface {
	Publish(ctx context.Context, t Type, payload Payload)
}
