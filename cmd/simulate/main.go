package main

import (
	"context"
	"fmt"
	"time"

	"ai-supportchat-be/internal/dto"
	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/pkg/kbase"
	"ai-supportchat-be/pkg/llm"
	ragsession "ai-supportchat-be/pkg/rag/session"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// consoleSink renders the frames a websocket peer would receive.
type consoleSink struct {
	lastSuggestionID string
}

func (s *consoleSink) Send(frame interface{}) {
	switch f := frame.(type) {
	case dto.StreamFrame:
		fmt.Print(f.Delta)
	case dto.StreamEndFrame:
		fmt.Println()
		color.White("[stream_end: %s]", f.Reason)
	case dto.ResponseFrame:
		color.Green("ASSISTANT: %s", f.Text)
		for _, c := range f.Citations {
			color.HiBlack("  source: %s", c.File)
		}
	case dto.ActionSuggestionFrame:
		s.lastSuggestionID = f.SuggestionId
		color.Yellow("SUGGESTED ACTION: %s (%s)", f.Action, f.SuggestionId)
	case dto.ActionExecutedFrame:
		color.Cyan("ACTION EXECUTED: %s -> %v", f.SuggestionId, f.Result)
	case dto.ErrorFrame:
		color.Red("ERROR: %s", f.Message)
	}
}

func seedKnowledgeBase(kb *kbase.KnowledgeBase) {
	kb.AddDocument(kbase.Document{
		File: "kb/prices.md",
		Content: `# Pricing
The basic plan costs 9.99 per month.
The premium plan costs 29.99 per month and includes priority support.
Enterprise pricing starts at 299 per month.
All plans include a 14 day free trial.`,
	})
	kb.AddDocument(kbase.Document{
		File: "kb/contact.md",
		Content: `# Contact
Our support line is +46 123 456 789.
Email support is available around the clock.
You can also ask us to call you back.`,
	})
	kb.AddDocument(kbase.Document{
		File: "kb/policies.md",
		Content: `# Policies
Refunds are available within 30 days of purchase.
Our uptime guarantee is 99.9%.
Cancellation takes effect at the end of the billing period.`,
	})
}

func main() {
	log := logger.NewIsolatedLogger("simulate.log")

	kb := kbase.NewKnowledgeBase(log)
	seedKnowledgeBase(kb)

	composer := llm.NewTemplateComposer(llm.Config{}, log)
	sink := &consoleSink{}

	engine := ragsession.NewEngine(
		uuid.NewString(),
		kb,
		composer,
		sink,
		ragsession.NopNotifier{},
		ragsession.SystemClock(),
		ragsession.Config{StreamDelay: 20 * time.Millisecond},
		log,
	)
	defer engine.Close()

	queries := []string{
		"what is the cost of the premium plan",
		"what is your uptime guarantee",
		"can you call me back about my refund",
		"how do I fly to the moon",
	}

	ctx := context.Background()
	for i, q := range queries {
		color.Magenta("\nUSER: %s", q)
		engine.HandleMessage(ctx, fmt.Sprintf("msg-%d", i+1), q)

		if sink.lastSuggestionID != "" {
			color.Magenta("USER: confirm %s", sink.lastSuggestionID)
			engine.HandleConfirm(sink.lastSuggestionID)
			// A second confirm inside the replay window is acknowledged but ignored.
			engine.HandleConfirm(sink.lastSuggestionID)
			sink.lastSuggestionID = ""
		}
	}
}
