package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformed is returned by Decode when a message is not a well-formed envelope.
var ErrMalformed = errors.New("malformed event envelope")

// wireEnvelope mirrors Envelope but keeps the payload raw so a missing
// field can be told apart from an empty one.
type wireEnvelope struct {
	ID        string          `json:"event_id"`
	Type      Type            `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Producer  string          `json:"producer"`
	Payload   json.RawMessage `json:"payload"`
}

// Encode serializes an envelope to its JSON wire form.
func Encode(e Envelope) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event %s: %w", e.ID, err)
	}

	return b, nil
}

// Decode parses a wire message into an envelope. Every envelope field is
// required; the payload's inner shape is not checked.
func Decode(b []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case w.ID == "":
		return Envelope{}, fmt.Errorf("%w: missing event_id", ErrMalformed)
	case w.Type == "":
		return Envelope{}, fmt.Errorf("%w: missing event_type", ErrMalformed)
	case w.Timestamp.IsZero():
		return Envelope{}, fmt.Errorf("%w: missing timestamp", ErrMalformed)
	case w.Producer == "":
		return Envelope{}, fmt.Errorf("%w: missing producer", ErrMalformed)
	case len(w.Payload) == 0:
		return Envelope{}, fmt.Errorf("%w: missing payload", ErrMalformed)
	}

	payload := Payload{}
	if err := json.Unmarshal(w.Payload, &payload); err != nil {
		return Envelope{}, fmt.Errorf("%w: payload: %v", ErrMalformed, err)
	}
	if payload == nil {
		payload = Payload{}
	}

	return Envelope{
		ID:        w.ID,
		Type:      w.Type,
		Timestamp: w.Timestamp.UTC(),
		Producer:  w.Producer,
		Payload:   payload,
	}, nil
}
