package service

import (
	"context"
	"time"

	"ai-supportchat-be/internal/dto"
	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/internal/repository/memory"
	"ai-supportchat-be/pkg/events"
	"ai-supportchat-be/pkg/kbase"
	"ai-supportchat-be/pkg/llm"
	ragsession "ai-supportchat-be/pkg/rag/session"
	"ai-supportchat-be/pkg/store"
)

// IChatService creates and tracks per-connection session engines and
// bridges their side channels (registry snapshots, action audit bus).
type IChatService interface {
	OpenSession(sessionID string, sink ragsession.Sink) *ragsession.Engine
	CloseSession(engine *ragsession.Engine)
	ListSessions() *dto.SessionListResponse
}

type chatService struct {
	kb            *kbase.KnowledgeBase
	composer      llm.Composer
	sessionConfig ragsession.Config
	sessionRepo   *memory.SessionRepository
	publisher     IPublisherService
	logger        logger.ILogger
}

func NewChatService(
	kb *kbase.KnowledgeBase,
	composer llm.Composer,
	sessionConfig ragsession.Config,
	sessionRepo *memory.SessionRepository,
	publisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		kb:            kb,
		composer:      composer,
		sessionConfig: sessionConfig,
		sessionRepo:   sessionRepo,
		publisher:     publisher,
		logger:        log,
	}
}

// OpenSession builds the engine owning one connection's state. The service
// itself acts as the engine's notifier.
func (cs *chatService) OpenSession(sessionID string, sink ragsession.Sink) *ragsession.Engine {
	cs.sessionRepo.Save(&store.Session{
		ID:          sessionID,
		State:       store.StateIdle,
		ConnectedAt: time.Now(),
	})
	cs.logger.Info("Chat", "Session opened", map[string]interface{}{"session_id": sessionID})

	return ragsession.NewEngine(
		sessionID,
		cs.kb,
		cs.composer,
		sink,
		cs, // Notifier
		ragsession.SystemClock(),
		cs.sessionConfig,
		cs.logger,
	)
}

func (cs *chatService) CloseSession(engine *ragsession.Engine) {
	engine.Close()
	cs.sessionRepo.Delete(engine.ID())
	cs.logger.Info("Chat", "Session closed", map[string]interface{}{"session_id": engine.ID()})
}

func (cs *chatService) ListSessions() *dto.SessionListResponse {
	sessions := cs.sessionRepo.List()

	resp := &dto.SessionListResponse{
		Count:    len(sessions),
		Sessions: make([]dto.SessionSummaryResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, dto.SessionSummaryResponse{
			Id:              s.ID,
			State:           s.State,
			LastQuery:       s.LastQuery,
			PendingActionId: s.PendingActionID,
			ConnectedAt:     s.ConnectedAt,
		})
	}
	return resp
}

// StateChanged implements ragsession.Notifier: refresh the registry snapshot.
func (cs *chatService) StateChanged(sessionID, state, lastQuery, pendingActionID string) {
	snapshot, found := cs.sessionRepo.Get(sessionID)
	if !found {
		// Session already closed; do not resurrect the record.
		return
	}
	snapshot.State = state
	snapshot.LastQuery = lastQuery
	snapshot.PendingActionID = pendingActionID
	cs.sessionRepo.Save(snapshot)
}

// ActionExecuted implements ragsession.Notifier: put the execution on the
// audit bus. Publishing is best-effort; a bus failure never reaches the peer.
func (cs *chatService) ActionExecuted(sessionID, suggestionID string, kind string, result map[string]interface{}) {
	evt := events.NewActionExecuted(sessionID, suggestionID, kind, result, time.Now())
	if err := cs.publisher.Publish(context.Background(), evt); err != nil {
		cs.logger.Error("Chat", "Failed to publish action event", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
