package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"ai-supportchat-be/internal/dto"
	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/pkg/guardrail"
	"ai-supportchat-be/pkg/kbase"
	"ai-supportchat-be/pkg/llm"
	"ai-supportchat-be/pkg/store"

	"github.com/google/uuid"
)

// DefaultActionWindow is the shared default for both action windows. They are
// independent policies and independently configurable; the equal default just
// mirrors the reference behavior.
const DefaultActionWindow = 30 * time.Second

// Config tunes one session engine. Zero values fall back to defaults.
type Config struct {
	MaxResults     int
	StreamDelay    time.Duration // inter-chunk delay; zero is valid and keeps ordering
	ValidityWindow time.Duration // unconfirmed proposal expiry
	ReplayWindow   time.Duration // duplicate confirmation no-op span
}

func (c Config) withDefaults() Config {
	if c.MaxResults <= 0 {
		c.MaxResults = kbase.DefaultMaxResults
	}
	if c.ValidityWindow <= 0 {
		c.ValidityWindow = DefaultActionWindow
	}
	if c.ReplayWindow <= 0 {
		c.ReplayWindow = DefaultActionWindow
	}
	return c
}

// Searcher is the retrieval dependency of the pipeline.
type Searcher interface {
	Search(query string, maxResults int) []kbase.SearchResult
}

// Engine owns the state of one chat connection and drives the
// retrieve -> compose -> guard -> stream pipeline for it. All inbound events
// of a connection go through exactly one Engine; engines are never shared.
//
// Concurrency contract: HandleMessage runs in the connection's pipeline
// goroutine, HandleCancel/HandleConfirm/Close run in the read loop. The
// mutex covers the action bookkeeping and flags; the streaming loop never
// holds it while sleeping, so confirmations stay responsive mid-stream.
type Engine struct {
	id       string
	kb       Searcher
	composer llm.Composer
	sink     Sink
	notifier Notifier
	clock    Clock
	config   Config
	logger   logger.ILogger

	mu               sync.Mutex
	currentMessageID string
	streaming        bool
	cancel           *CancelToken
	pending          *ActionProposal
	confirmed        map[string]time.Time
	closed           bool
}

func NewEngine(
	id string,
	kb Searcher,
	composer llm.Composer,
	sink Sink,
	notifier Notifier,
	clock Clock,
	config Config,
	log logger.ILogger,
) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Engine{
		id:        id,
		kb:        kb,
		composer:  composer,
		sink:      sink,
		notifier:  notifier,
		clock:     clock,
		config:    config.withDefaults(),
		logger:    log,
		confirmed: make(map[string]time.Time),
	}
}

func (e *Engine) ID() string {
	return e.id
}

// HandleMessage runs the full query pipeline for one inbound message and
// streams the result. It blocks until the terminal marker has been emitted.
func (e *Engine) HandleMessage(ctx context.Context, messageID, text string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.currentMessageID = messageID
	e.streaming = true
	token := &CancelToken{}
	e.cancel = token
	e.mu.Unlock()

	e.notifier.StateChanged(e.id, store.StateStreaming, text, e.pendingID())
	e.logger.Info("Session", "Processing message", map[string]interface{}{
		"session_id": e.id,
		"message_id": messageID,
		"text_len":   len(text),
	})

	answer, action, err := e.runPipeline(ctx, text)
	if err != nil {
		e.logger.Error("Session", "Pipeline failed", map[string]interface{}{
			"session_id": e.id,
			"message_id": messageID,
			"error":      err.Error(),
		})
		e.sink.Send(dto.NewErrorFrame(err.Error()))
		e.finishMessage(text)
		return
	}

	sent := e.streamChunks(answer.Text, token)

	if token.Cancelled() {
		e.sink.Send(dto.NewStreamEndFrame(dto.StreamEndCancelled))
		e.sink.Send(dto.NewResponseFrame(strings.TrimSpace(sent), toCitationDTOs(answer.Citations)))
		e.logger.Info("Session", "Stream cancelled by client", map[string]interface{}{
			"session_id": e.id,
			"message_id": messageID,
		})
		e.finishMessage(text)
		return
	}

	e.sink.Send(dto.NewStreamEndFrame(dto.StreamEndDone))
	e.sink.Send(dto.NewResponseFrame(answer.Text, toCitationDTOs(answer.Citations)))

	if action != nil {
		e.propose(action)
	}

	e.finishMessage(text)
}

// runPipeline executes retrieve -> compose -> guard and returns the answer
// the session may release. Zero retrieval hits short-circuit to the fixed
// no-sources answer without invoking the composer or the guardrail; a
// guardrail rejection downgrades to a refusal carrying the same citations.
// Only a fully verified answer keeps its suggested action.
func (e *Engine) runPipeline(ctx context.Context, query string) (guardrail.GuardedAnswer, *llm.ActionHint, error) {
	results := e.kb.Search(query, e.config.MaxResults)
	if len(results) == 0 {
		return guardrail.NoSourcesResponse(), nil, nil
	}

	draft, err := e.composer.Compose(ctx, query, results)
	if err != nil {
		return guardrail.GuardedAnswer{}, nil, err
	}

	verification := guardrail.Verify(draft.Text, draft.Citations)
	if !verification.Valid {
		e.logger.Warn("Session", "Guardrail triggered - unverified numbers detected", map[string]interface{}{
			"session_id": e.id,
			"unverified": verification.Unverified,
		})
		return guardrail.RefusalResponse(verification.Unverified, draft.Citations), nil, nil
	}

	return guardrail.GuardedAnswer{Text: draft.Text, Citations: draft.Citations}, draft.SuggestedAction, nil
}

// streamChunks emits the answer word by word, one chunk per token with its
// trailing space restored, observing the cancel token before every send.
// Returns the concatenation of chunks actually sent.
func (e *Engine) streamChunks(text string, token *CancelToken) string {
	var sent strings.Builder
	for _, word := range strings.Split(text, " ") {
		if token.Cancelled() {
			break
		}
		chunk := word + " "
		e.sink.Send(dto.NewStreamFrame(chunk))
		sent.WriteString(chunk)

		if e.config.StreamDelay > 0 {
			time.Sleep(e.config.StreamDelay)
		}
	}
	return sent.String()
}

// HandleCancel requests cancellation of the in-flight stream. Outside of
// streaming it is a no-op.
func (e *Engine) HandleCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.streaming || e.cancel == nil {
		e.logger.Debug("Session", "Cancel ignored - not streaming", map[string]interface{}{"session_id": e.id})
		return
	}
	e.logger.Info("Session", "Cancel requested", map[string]interface{}{
		"session_id": e.id,
		"message_id": e.currentMessageID,
	})
	e.cancel.Cancel()
}

// Close marks the session dead: in-flight work is cancelled and the pending
// proposal cleared. No further events are processed afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	if e.cancel != nil {
		e.cancel.Cancel()
	}
	e.pending = nil
}

func (e *Engine) propose(hint *llm.ActionHint) {
	e.mu.Lock()
	proposal := &ActionProposal{
		SuggestionID: "action_" + uuid.NewString(),
		Kind:         hint.Action,
		Payload:      hint.Payload,
		CreatedAt:    e.clock.Now(),
	}
	// A new proposal silently supersedes any prior pending one.
	e.pending = proposal
	e.mu.Unlock()

	e.sink.Send(dto.NewActionSuggestionFrame(proposal.SuggestionID, string(proposal.Kind), proposal.Payload))
	e.logger.Info("Session", "Action suggested", map[string]interface{}{
		"session_id":    e.id,
		"suggestion_id": proposal.SuggestionID,
		"action":        string(proposal.Kind),
	})
}

func (e *Engine) finishMessage(lastQuery string) {
	e.mu.Lock()
	e.streaming = false
	e.currentMessageID = ""
	e.cancel = nil
	e.mu.Unlock()

	e.notifier.StateChanged(e.id, store.StateIdle, lastQuery, e.pendingID())
}

func (e *Engine) pendingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return ""
	}
	return e.pending.SuggestionID
}

func toCitationDTOs(citations []guardrail.Citation) []dto.CitationDTO {
	out := make([]dto.CitationDTO, 0, len(citations))
	for _, c := range citations {
		out = append(out, dto.CitationDTO{File: c.File, Snippet: c.Snippet})
	}
	return out
}
