// Package events defines roster event payloads shared by the producer and consumer.
package events

import "time"

// Event types carried in the event_type header.
const (
	RosterSignedUp     = "roster.signed_up"
	RosterUnregistered = "roster.unregistered"
)

// Operation names used as metric labels.
const (
	OperationSignup     = "signup"
	OperationUnregister = "unregister"
)

// RosterEvent is emitted after a successful signup or unregister.
type RosterEvent struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	Activity         string    `json:"activity"`
	Email            string    `json:"email"`
	ParticipantCount int       `json:"participant_count"`
	MaxParticipants  int       `json:"max_participants"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Operation maps the event type onto the operation that produced it.
func (e RosterEvent) Operation() string {
	switch e.EventType {
	case RosterSignedUp:
		return OperationSignup
	case RosterUnregistered:
		return OperationUnregister
	default:
		return ""
	}
}

// Kafka header keys attached to every roster message.
const (
	HeaderEventType   = "event_type"
	HeaderEventID     = "event_id"
	HeaderContentType = "content_type"
)

// ContentTypeJSON is the only payload encoding produced today.
const ContentTypeJSON = "application/json"
