package llm

import (
	"context"

	"ai-supportchat-be/pkg/guardrail"
	"ai-supportchat-be/pkg/kbase"
)

// ActionKind is the closed set of side-effecting actions the assistant may
// propose.
type ActionKind string

const (
	ActionScheduleCallback ActionKind = "schedule_callback"
	ActionSendSMS          ActionKind = "send_sms"
	ActionCreateTicket     ActionKind = "create_ticket"
)

// ActionHint is a suggested, not-yet-executed action attached to a draft.
type ActionHint struct {
	Action  ActionKind             `json:"action"`
	Payload map[string]interface{} `json:"payload"`
}

// Draft is a candidate answer produced by a composer. Transient: it exists
// only within one query-processing cycle, before the guardrail verdict.
type Draft struct {
	Text            string
	Citations       []guardrail.Citation
	SuggestedAction *ActionHint
}

// Composer turns a query plus ranked passages into prose. Its internal
// wording is not part of the session contract, only this input/output shape.
type Composer interface {
	Compose(ctx context.Context, query string, results []kbase.SearchResult) (*Draft, error)
}
