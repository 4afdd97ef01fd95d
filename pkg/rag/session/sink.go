package session

// Sink carries outbound frames to the peer. The transport adapter (WebSocket
// client) implements it; tests use a recording sink. Implementations must be
// safe for calls from the streaming goroutine and the inbound event path.
type Sink interface {
	Send(frame interface{})
}

// Notifier receives side-channel events from a session engine so the rest of
// the service (registry snapshots, audit bus) can observe state without the
// engine knowing about them. All methods may be called from the streaming
// goroutine.
type Notifier interface {
	StateChanged(sessionID, state, lastQuery, pendingActionID string)
	ActionExecuted(sessionID, suggestionID string, kind string, result map[string]interface{})
}

// NopNotifier satisfies Notifier for tests and the simulation CLI.
type NopNotifier struct{}

func (NopNotifier) StateChanged(string, string, string, string) {}

func (NopNotifier) ActionExecuted(string, string, string, map[string]interface{}) {}
