package main

import (
	"context"
	"log"

	"ai-supportchat-be/internal/bootstrap"
	"ai-supportchat-be/internal/config"
	"ai-supportchat-be/internal/server"
	"ai-supportchat-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Load Knowledge Base documents
	if err := container.KnowledgeBase.Load(cfg.Chat.KnowledgeBaseDir); err != nil {
		log.Panicf("Unable to load knowledge base: %v", err)
	}

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Audit Consumer...")
		if err := container.AuditService.Consume(context.Background()); err != nil {
			log.Printf("Background Audit Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
