package service

import (
	"context"
	"encoding/json"
	"sync"

	"ai-supportchat-be/internal/dto"
	"ai-supportchat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// maxAuditEntries bounds the in-memory trail; oldest entries fall off first.
const maxAuditEntries = 200

type IAuditService interface {
	Consume(ctx context.Context) error
	Recent(limit int) []dto.AuditEntryResponse
}

// auditService subscribes to the action bus and keeps a bounded in-memory
// trail of executed actions for the ops endpoint. Nothing here survives a
// restart; that is intentional.
type auditService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger

	mu      sync.RWMutex
	entries []dto.AuditEntryResponse
}

func NewAuditService(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) IAuditService {
	return &auditService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (as *auditService) Consume(ctx context.Context) error {
	messages, err := as.pubSub.Subscribe(ctx, as.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			as.processMessage(msg)
		}
	}()

	return nil
}

func (as *auditService) processMessage(msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		as.logger.Error("Audit", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	entry := dto.AuditEntryResponse{
		ExecutedAt: envelope.OccurredAt,
	}
	if v, ok := envelope.Data["session_id"].(string); ok {
		entry.SessionId = v
	}
	if v, ok := envelope.Data["suggestion_id"].(string); ok {
		entry.SuggestionId = v
	}
	if v, ok := envelope.Data["action"].(string); ok {
		entry.Action = v
	}
	if v, ok := envelope.Data["result"].(map[string]interface{}); ok {
		entry.Result = v
	}

	as.mu.Lock()
	as.entries = append(as.entries, entry)
	if len(as.entries) > maxAuditEntries {
		as.entries = as.entries[len(as.entries)-maxAuditEntries:]
	}
	as.mu.Unlock()

	as.logger.Info("Audit", "Action recorded", map[string]interface{}{
		"session_id":    entry.SessionId,
		"suggestion_id": entry.SuggestionId,
		"action":        entry.Action,
	})
	msg.Ack()
}

// Recent returns up to limit entries, newest first.
func (as *auditService) Recent(limit int) []dto.AuditEntryResponse {
	as.mu.RLock()
	defer as.mu.RUnlock()

	if limit <= 0 || limit > len(as.entries) {
		limit = len(as.entries)
	}

	out := make([]dto.AuditEntryResponse, 0, limit)
	for i := len(as.entries) - 1; i >= len(as.entries)-limit; i-- {
		out = append(out, as.entries[i])
	}
	return out
}
