package bootstrap

import (
	"log"

	"ai-supportchat-be/internal/config"
	"ai-supportchat-be/internal/handler"
	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/internal/repository/memory"
	"ai-supportchat-be/internal/service"
	"ai-supportchat-be/internal/websocket"
	"ai-supportchat-be/pkg/kbase"
	"ai-supportchat-be/pkg/llm"
	ragsession "ai-supportchat-be/pkg/rag/session"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const actionAuditTopic = "ACTION_EXECUTED"

type Container struct {
	// Handlers
	ChatHandler  *handler.ChatHandler
	AuditHandler *handler.AuditHandler

	// Background Services (Exposed for main.go to run)
	AuditService service.IAuditService

	// WebSockets
	WebSocketHub *websocket.Hub

	// Exposed for main.go to load documents before serving
	KnowledgeBase *kbase.KnowledgeBase

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	wsLogger := logger.NewIsolatedLogger("websocket.log")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Domain core
	kb := kbase.NewKnowledgeBase(sysLogger)
	composer := llm.NewTemplateComposer(llm.Config{
		Hallucinate: cfg.Chat.Hallucinate,
	}, sysLogger)
	if cfg.Chat.Hallucinate {
		log.Printf("[WARN] Composer fault injection is ON, answers may fail verification")
	}

	sessionConfig := ragsession.Config{
		MaxResults:     cfg.Chat.MaxResults,
		StreamDelay:    cfg.Chat.StreamDelay,
		ValidityWindow: cfg.Actions.ValidityWindow,
		ReplayWindow:   cfg.Actions.ReplayWindow,
	}

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 4. Services
	publisherService := service.NewPublisherService(actionAuditTopic, pubSub)
	auditService := service.NewAuditService(pubSub, actionAuditTopic, sysLogger)
	chatService := service.NewChatService(kb, composer, sessionConfig, sessionRepo, publisherService, sysLogger)

	// 5. WebSocket Hub
	hub := websocket.NewHub(wsLogger)
	go hub.Run()

	// 6. Handlers
	chatHandler := handler.NewChatHandler(chatService, hub, wsLogger)
	auditHandler := handler.NewAuditHandler(auditService, sysLogger)

	return &Container{
		ChatHandler:   chatHandler,
		AuditHandler:  auditHandler,
		AuditService:  auditService,
		WebSocketHub:  hub,
		KnowledgeBase: kb,
		Logger:        sysLogger,
	}
}
