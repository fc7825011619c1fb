package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TUTOR_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// TurnCompletedEvent is emitted after every tutor turn that produced a
// terminal payload. Downstream consumers use it for analytics and for
// keeping the learner's mastery profile warm.
type TurnCompletedEvent struct {
	BaseEvent
}

func NewTurnCompletedEvent(userId, traceId, intent, payloadKind string, sourceCount int) TurnCompletedEvent {
	return TurnCompletedEvent{
		BaseEvent: BaseEvent{
			Type: "TUTOR_TURN_COMPLETED",
			Data: map[string]interface{}{
				"user_id":      userId,
				"trace_id":     traceId,
				"intent":       intent,
				"payload_kind": payloadKind,
				"source_count": sourceCount,
			},
			OccurredAt: time.Now(),
		},
	}
}
