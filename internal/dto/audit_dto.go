package dto

import "time"

// AuditEntryResponse is one recorded action execution.
type AuditEntryResponse struct {
	SessionId    string                 `json:"session_id"`
	SuggestionId string                 `json:"suggestion_id"`
	Action       string                 `json:"action"`
	Result       map[string]interface{} `json:"result"`
	ExecutedAt   time.Time              `json:"executed_at"`
}

// SessionSummaryResponse is the ops view of one live or recent session.
type SessionSummaryResponse struct {
	Id              string    `json:"id"`
	State           string    `json:"state"`
	LastQuery       string    `json:"last_query,omitempty"`
	PendingActionId string    `json:"pending_action_id,omitempty"`
	ConnectedAt     time.Time `json:"connected_at"`
}

type SessionListResponse struct {
	Count    int                      `json:"count"`
	Sessions []SessionSummaryResponse `json:"sessions"`
}
