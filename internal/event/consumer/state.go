package consumer

import "fmt"

// State is the consumer's connection state.
type State int32

const (
	// StateDisconnected has no active subscription. It is entered at startup
	// and after every connection error.
	StateDisconnected State = iota
	// StateConnecting is opening a subscription on the broker.
	StateConnecting
	// StateSubscribed is blocked receiving messages.
	StateSubscribed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
