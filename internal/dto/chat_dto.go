package dto

// Client -> Server frame types
const (
	ClientFrameMessage       = "message"
	ClientFrameCancel        = "cancel"
	ClientFrameConfirmAction = "confirm_action"
)

// ClientFrame is the single inbound envelope. Field requirements depend on
// Type: "message" needs Id and Text, "confirm_action" needs SuggestionId,
// "cancel" carries nothing.
type ClientFrame struct {
	Type         string `json:"type" validate:"required,oneof=message cancel confirm_action"`
	Id           string `json:"id,omitempty" validate:"required_if=Type message"`
	Text         string `json:"text,omitempty" validate:"required_if=Type message"`
	SuggestionId string `json:"suggestionId,omitempty" validate:"required_if=Type confirm_action"`
}

// Server -> Client frame types
const (
	ServerFrameStream           = "stream"
	ServerFrameStreamEnd        = "stream_end"
	ServerFrameResponse         = "response"
	ServerFrameActionSuggestion = "action_suggestion"
	ServerFrameActionExecuted   = "action_executed"
	ServerFrameError            = "error"
)

// Terminal stream marker reasons
const (
	StreamEndDone      = "done"
	StreamEndCancelled = "cancelled"
)

type CitationDTO struct {
	File    string `json:"file"`
	Snippet string `json:"snippet"`
}

// StreamFrame carries one incremental chunk of the answer.
type StreamFrame struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`
}

func NewStreamFrame(delta string) StreamFrame {
	return StreamFrame{Type: ServerFrameStream, Delta: delta}
}

// StreamEndFrame is the terminal marker for the current message.
type StreamEndFrame struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func NewStreamEndFrame(reason string) StreamEndFrame {
	return StreamEndFrame{Type: ServerFrameStreamEnd, Reason: reason}
}

// ResponseFrame holds the full final answer with its grounding sources.
type ResponseFrame struct {
	Type      string        `json:"type"`
	Text      string        `json:"text"`
	Citations []CitationDTO `json:"citations"`
}

func NewResponseFrame(text string, citations []CitationDTO) ResponseFrame {
	if citations == nil {
		citations = []CitationDTO{}
	}
	return ResponseFrame{Type: ServerFrameResponse, Text: text, Citations: citations}
}

// ActionSuggestionFrame proposes a side-effecting action awaiting confirmation.
type ActionSuggestionFrame struct {
	Type         string                 `json:"type"`
	SuggestionId string                 `json:"suggestionId"`
	Action       string                 `json:"action"`
	Payload      map[string]interface{} `json:"payload"`
}

func NewActionSuggestionFrame(suggestionId, action string, payload map[string]interface{}) ActionSuggestionFrame {
	return ActionSuggestionFrame{
		Type:         ServerFrameActionSuggestion,
		SuggestionId: suggestionId,
		Action:       action,
		Payload:      payload,
	}
}

// ActionExecutedFrame reports the outcome of a confirmed action.
type ActionExecutedFrame struct {
	Type         string                 `json:"type"`
	SuggestionId string                 `json:"suggestionId"`
	Result       map[string]interface{} `json:"result"`
}

func NewActionExecutedFrame(suggestionId string, result map[string]interface{}) ActionExecutedFrame {
	return ActionExecutedFrame{
		Type:         ServerFrameActionExecuted,
		SuggestionId: suggestionId,
		Result:       result,
	}
}

// ErrorFrame reports malformed input or an invalid/expired action reference.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorFrame(message string) ErrorFrame {
	return ErrorFrame{Type: ServerFrameError, Message: message}
}
