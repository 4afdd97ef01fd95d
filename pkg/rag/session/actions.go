package session

import (
	"fmt"

	"ai-supportchat-be/internal/dto"
)

// HandleConfirm attempts to execute the referenced proposal. It is
// synchronous and independent of the query pipeline: confirming never changes
// the Idle/Streaming state and never waits on an active stream.
func (e *Engine) HandleConfirm(suggestionID string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	now := e.clock.Now()

	// Replay protection: a proposal executed within the replay window is a
	// no-op, reported as ignored instead of re-executing the side effect.
	if executedAt, ok := e.confirmed[suggestionID]; ok {
		if now.Sub(executedAt) < e.config.ReplayWindow {
			e.mu.Unlock()
			e.logger.Warn("Session", "Duplicate confirmation ignored", map[string]interface{}{
				"session_id":    e.id,
				"suggestion_id": suggestionID,
			})
			e.sink.Send(dto.NewActionExecutedFrame(suggestionID, map[string]interface{}{"ignored": true}))
			return
		}
		// Lazy sweep on access: stale records no longer shield the id.
		delete(e.confirmed, suggestionID)
	}

	if e.pending == nil || e.pending.SuggestionID != suggestionID {
		e.mu.Unlock()
		e.logger.Warn("Session", "Invalid action confirmation", map[string]interface{}{
			"session_id":    e.id,
			"suggestion_id": suggestionID,
		})
		e.sink.Send(dto.NewErrorFrame(fmt.Sprintf("Invalid action: %s", suggestionID)))
		return
	}

	// An expired proposal can never execute and leaves no confirmed record:
	// confirming it again afterwards reads as invalid, not ignored.
	if now.Sub(e.pending.CreatedAt) > e.config.ValidityWindow {
		age := now.Sub(e.pending.CreatedAt)
		e.pending = nil
		e.mu.Unlock()
		e.logger.Warn("Session", "Action expired", map[string]interface{}{
			"session_id":    e.id,
			"suggestion_id": suggestionID,
			"age":           age.String(),
		})
		e.sink.Send(dto.NewErrorFrame(fmt.Sprintf("Action expired: %s", suggestionID)))
		return
	}

	proposal := e.pending
	result := executeAction(proposal.Kind, proposal.Payload, now)

	e.confirmed[suggestionID] = now
	for id, executedAt := range e.confirmed {
		if now.Sub(executedAt) > e.config.ReplayWindow {
			delete(e.confirmed, id)
		}
	}
	e.pending = nil
	e.mu.Unlock()

	e.logger.Info("Session", "Action executed", map[string]interface{}{
		"session_id":    e.id,
		"suggestion_id": suggestionID,
		"action":        string(proposal.Kind),
	})
	e.sink.Send(dto.NewActionExecutedFrame(suggestionID, result))
	e.notifier.ActionExecuted(e.id, suggestionID, string(proposal.Kind), result)
}
