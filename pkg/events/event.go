package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ACTION_EXECUTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used across the service.
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

// Event type codes
const (
	TypeActionExecuted = "ACTION_EXECUTED"
)

// NewActionExecuted builds the event published whenever a confirmed action
// proposal is executed by a session.
func NewActionExecuted(sessionID, suggestionID, action string, result map[string]interface{}, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeActionExecuted,
		Data: map[string]interface{}{
			"session_id":    sessionID,
			"suggestion_id": suggestionID,
			"action":        action,
			"result":        result,
		},
		OccurredAt: at,
	}
}
