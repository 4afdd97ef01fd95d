package llm

import (
	"context"
	"strings"
	"time"

	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/pkg/guardrail"
	"ai-supportchat-be/pkg/kbase"
)

// Config controls the template composer.
type Config struct {
	// Hallucinate appends an unverifiable numeric claim to every draft so
	// the grounding guardrail path can be exercised end to end.
	Hallucinate bool
}

// TemplateComposer is the stand-in for a real language model: it builds the
// answer text directly from the top retrieved snippet and detects requested
// actions by keyword.
type TemplateComposer struct {
	config Config
	logger logger.ILogger
}

func NewTemplateComposer(config Config, log logger.ILogger) *TemplateComposer {
	return &TemplateComposer{config: config, logger: log}
}

// SetConfig replaces the composer configuration. Used by tests and the
// simulation CLI to toggle fault injection between queries.
func (c *TemplateComposer) SetConfig(config Config) {
	c.config = config
}

func (c *TemplateComposer) Compose(ctx context.Context, query string, results []kbase.SearchResult) (*Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	citations := make([]guardrail.Citation, 0, len(results))
	for _, r := range results {
		citations = append(citations, guardrail.Citation{File: r.File, Snippet: r.Snippet})
	}

	text := c.buildResponseText(results)

	if c.config.Hallucinate {
		c.logger.Warn("Composer", "Hallucination mode enabled - injecting fake data", nil)
		text += generateHallucination(results)
	}

	draft := &Draft{
		Text:            text,
		Citations:       citations,
		SuggestedAction: detectAction(query),
	}

	c.logger.Debug("Composer", "Draft generated", map[string]interface{}{
		"response_length": len(draft.Text),
		"citation_count":  len(draft.Citations),
		"has_action":      draft.SuggestedAction != nil,
	})
	return draft, nil
}

// buildResponseText surfaces the top snippet verbatim. A real LLM would be
// much smarter here; keeping the snippet text intact is what makes the
// numeric grounding check meaningful.
func (c *TemplateComposer) buildResponseText(results []kbase.SearchResult) string {
	return "Based on the knowledge base: " + strings.TrimSpace(results[0].Snippet)
}

// detectAction maps query phrasing to an action hint.
func detectAction(query string) *ActionHint {
	lower := strings.ToLower(query)
	payload := map[string]interface{}{"requestedAt": time.Now().UTC().Format(time.RFC3339)}

	switch {
	case strings.Contains(lower, "call me") || strings.Contains(lower, "call person"):
		return &ActionHint{Action: ActionScheduleCallback, Payload: payload}
	case strings.Contains(lower, "sms") || strings.Contains(lower, "text me"):
		return &ActionHint{Action: ActionSendSMS, Payload: payload}
	case strings.Contains(lower, "ticket") || strings.Contains(lower, "support"):
		return &ActionHint{Action: ActionCreateTicket, Payload: payload}
	}
	return nil
}
