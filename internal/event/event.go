package event

import (
	"time"

	"github.com/google/uuid"
)

// ProducerName identifies the service that builds envelopes.
const ProducerName = "api-service"

// Type is the lifecycle tag carried by every envelope.
type Type string

const (
	TaskCreated   Type = "task.created"
	TaskUpdated   Type = "task.updated"
	TaskCompleted Type = "task.completed"
)

// Known reports whether t belongs to the recognized set of lifecycle tags.
// Unknown types are still valid envelopes; consumers simply have no handler for them.
func (t Type) Known() bool {
	switch t {
	case TaskCreated, TaskUpdated, TaskCompleted:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

// Payload is the opaque, event-type specific body of an envelope.
type Payload map[string]any

// String returns the value stored under key when it is a string, or "".
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Envelope wraps a domain event for transport. Envelopes are built once by
// Build and are never modified afterwards.
type Envelope struct {
	// ID is a random UUID assigned at construction
	ID string `json:"event_id"`
	// Type discriminates the payload (e.g., "task.created")
	Type Type `json:"event_type"`
	// Timestamp is the construction time in UTC
	Timestamp time.Time `json:"timestamp"`
	// Producer names the origin service
	Producer string `json:"producer"`
	// Payload contains the event data
	Payload Payload `json:"payload"`
}

// Build returns a fully populated envelope for the given type and payload.
// A nil payload is replaced with an empty one so the wire form is always an object.
func Build(t Type, payload Payload) Envelope {
	if payload == nil {
		payload = Payload{}
	}

	return Envelope{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Producer:  ProducerName,
		Payload:   payload,
	}
}
