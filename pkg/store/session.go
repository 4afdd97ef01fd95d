package store

import "time"

// Session is the registry snapshot of one WebSocket chat session. The
// authoritative state lives inside the connection's own engine; this record
// only exists so the ops endpoints can see who is connected and what they
// are doing.
type Session struct {
	ID              string    `json:"id"`
	State           string    `json:"state"` // "IDLE" | "STREAMING"
	LastQuery       string    `json:"last_query"`
	PendingActionID string    `json:"pending_action_id"`
	ConnectedAt     time.Time `json:"connected_at"`
}

const (
	StateIdle      = "IDLE"
	StateStreaming = "STREAMING"
)
