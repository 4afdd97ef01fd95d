package session

import (
	"fmt"
	"time"

	"ai-supportchat-be/pkg/llm"
)

// ActionProposal is a suggested side-effecting operation waiting for the
// client's confirmation. At most one is pending per session; a new proposal
// silently supersedes the previous one.
type ActionProposal struct {
	SuggestionID string
	Kind         llm.ActionKind
	Payload      map[string]interface{}
	CreatedAt    time.Time
}

// executeAction dispatches purely on the action kind. Every kind is a
// terminal synchronous stub; an unrecognized kind yields a structured failure
// payload rather than an error.
func executeAction(kind llm.ActionKind, payload map[string]interface{}, now time.Time) map[string]interface{} {
	switch kind {
	case llm.ActionScheduleCallback:
		return map[string]interface{}{
			"success":     true,
			"message":     "Callback scheduled",
			"scheduledAt": now.UTC().Format(time.RFC3339),
		}
	case llm.ActionSendSMS:
		return map[string]interface{}{
			"success": true,
			"message": "SMS sent",
			"sentAt":  now.UTC().Format(time.RFC3339),
		}
	case llm.ActionCreateTicket:
		return map[string]interface{}{
			"success":  true,
			"message":  "Ticket created",
			"ticketId": fmt.Sprintf("TICKET-%d", now.UnixMilli()),
		}
	default:
		return map[string]interface{}{
			"success": false,
			"message": fmt.Sprintf("Unknown action: %s", kind),
		}
	}
}
