package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-supportchat-be/internal/dto"
	"ai-supportchat-be/internal/pkg/logger"
	"ai-supportchat-be/pkg/kbase"
	"ai-supportchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingSink captures every frame; onSend, when set, runs before the
// frame is recorded so tests can trigger engine calls mid-stream.
type recordingSink struct {
	mu     sync.Mutex
	frames []interface{}
	onSend func(frame interface{})
}

func (s *recordingSink) Send(frame interface{}) {
	if s.onSend != nil {
		s.onSend(frame)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

func (s *recordingSink) all() []interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]interface{}(nil), s.frames...)
}

func (s *recordingSink) streamFrames() []dto.StreamFrame {
	var out []dto.StreamFrame
	for _, f := range s.all() {
		if sf, ok := f.(dto.StreamFrame); ok {
			out = append(out, sf)
		}
	}
	return out
}

func (s *recordingSink) lastResponse() (dto.ResponseFrame, bool) {
	var resp dto.ResponseFrame
	found := false
	for _, f := range s.all() {
		if rf, ok := f.(dto.ResponseFrame); ok {
			resp = rf
			found = true
		}
	}
	return resp, found
}

func (s *recordingSink) suggestions() []dto.ActionSuggestionFrame {
	var out []dto.ActionSuggestionFrame
	for _, f := range s.all() {
		if af, ok := f.(dto.ActionSuggestionFrame); ok {
			out = append(out, af)
		}
	}
	return out
}

func (s *recordingSink) executed() []dto.ActionExecutedFrame {
	var out []dto.ActionExecutedFrame
	for _, f := range s.all() {
		if af, ok := f.(dto.ActionExecutedFrame); ok {
			out = append(out, af)
		}
	}
	return out
}

func (s *recordingSink) errors() []dto.ErrorFrame {
	var out []dto.ErrorFrame
	for _, f := range s.all() {
		if ef, ok := f.(dto.ErrorFrame); ok {
			out = append(out, ef)
		}
	}
	return out
}

func (s *recordingSink) streamEnds() []dto.StreamEndFrame {
	var out []dto.StreamEndFrame
	for _, f := range s.all() {
		if ef, ok := f.(dto.StreamEndFrame); ok {
			out = append(out, ef)
		}
	}
	return out
}

func sessionKB() *kbase.KnowledgeBase {
	kb := kbase.NewKnowledgeBase(logger.NopLogger{})
	kb.AddDocument(kbase.Document{
		File: "kb/prices.md",
		Content: "# Pricing\n" +
			"The premium plan costs 29.99 per month.\n" +
			"All plans include a 14 day free trial.",
	})
	kb.AddDocument(kbase.Document{
		File:    "kb/contact.md",
		Content: "# Contact\nYou can ask us to call you back anytime.",
	})
	return kb
}

func newTestEngine(t *testing.T, composerCfg llm.Config, cfg Config) (*Engine, *recordingSink, *fakeClock) {
	t.Helper()
	sink := &recordingSink{}
	clock := newFakeClock()
	engine := NewEngine(
		"sess-test",
		sessionKB(),
		llm.NewTemplateComposer(composerCfg, logger.NopLogger{}),
		sink,
		nil,
		clock,
		cfg,
		logger.NopLogger{},
	)
	return engine, sink, clock
}

func TestHandleMessageStreamsFullAnswer(t *testing.T) {
	engine, sink, _ := newTestEngine(t, llm.Config{}, Config{})

	engine.HandleMessage(context.Background(), "m1", "how much does the premium plan cost")

	resp, ok := sink.lastResponse()
	assert.True(t, ok, "expected a response frame")
	want := "Based on the knowledge base: # Pricing\n" +
		"The premium plan costs 29.99 per month.\n" +
		"All plans include a 14 day free trial."
	assert.Equal(t, want, resp.Text)
	assert.NotEmpty(t, resp.Citations)

	ends := sink.streamEnds()
	if assert.Len(t, ends, 1) {
		assert.Equal(t, dto.StreamEndDone, ends[0].Reason)
	}

	// Concatenated chunks reassemble the full answer.
	var rebuilt strings.Builder
	for _, sf := range sink.streamFrames() {
		rebuilt.WriteString(sf.Delta)
	}
	assert.Equal(t, resp.Text, strings.TrimSpace(rebuilt.String()))
}

func TestHandleMessageNoSources(t *testing.T) {
	engine, sink, _ := newTestEngine(t, llm.Config{}, Config{})

	engine.HandleMessage(context.Background(), "m1", "completely unrelated xylophone query")

	resp, ok := sink.lastResponse()
	assert.True(t, ok)
	assert.Equal(t, "I couldn't find any references to this in the knowledge base.", resp.Text)
	assert.Empty(t, resp.Citations)
	assert.Empty(t, sink.suggestions(), "no-sources answers never carry actions")
}

func TestHandleMessageGuardrailRefusal(t *testing.T) {
	engine, sink, _ := newTestEngine(t, llm.Config{Hallucinate: true}, Config{})

	engine.HandleMessage(context.Background(), "m1", "please call me about the premium plan cost")

	resp, ok := sink.lastResponse()
	assert.True(t, ok)
	assert.Contains(t, resp.Text, "I cannot verify that information.")
	assert.NotEmpty(t, resp.Citations, "refusal keeps the citations")
	assert.Empty(t, sink.suggestions(), "a refused answer must not propose its action")
}

func TestCancelMidStream(t *testing.T) {
	engine, sink, _ := newTestEngine(t, llm.Config{}, Config{})

	chunks := 0
	sink.onSend = func(frame interface{}) {
		if _, ok := frame.(dto.StreamFrame); ok {
			chunks++
			if chunks == 3 {
				engine.HandleCancel()
			}
		}
	}

	engine.HandleMessage(context.Background(), "m1", "how much does the premium plan cost")

	streamed := sink.streamFrames()
	assert.Len(t, streamed, 3, "no chunk may follow the cancellation")

	ends := sink.streamEnds()
	if assert.Len(t, ends, 1) {
		assert.Equal(t, dto.StreamEndCancelled, ends[0].Reason)
	}

	var partial strings.Builder
	for _, sf := range streamed {
		partial.WriteString(sf.Delta)
	}
	resp, ok := sink.lastResponse()
	assert.True(t, ok, "a cancelled stream still gets its terminal response")
	assert.Equal(t, strings.TrimSpace(partial.String()), resp.Text)
}

func TestCancelWhenIdleIsNoop(t *testing.T) {
	engine, sink, _ := newTestEngine(t, llm.Config{}, Config{})

	engine.HandleCancel()

	assert.Empty(t, sink.all(), "idle cancel must not emit anything")
}

func TestConfirmExecutesThenIgnoresReplay(t *testing.T) {
	engine, sink, _ := newTestEngine(t, llm.Config{}, Config{})

	engine.HandleMessage(context.Background(), "m1", "can you call me back")

	suggestions := sink.suggestions()
	if !assert.Len(t, suggestions, 1) {
		return
	}
	id := suggestions[0].SuggestionId
	assert.Equal(t, "schedule_callback", suggestions[0].Action)

	engine.HandleConfirm(id)
	engine.HandleConfirm(id)

	executed := sink.executed()
	if !assert.Len(t, executed, 2) {
		return
	}
	assert.Equal(t, true, executed[0].Result["success"])
	assert.Equal(t, "Callback scheduled", executed[0].Result["message"])
	assert.Equal(t, true, executed[1].Result["ignored"], "second confirm within the replay window is a no-op")
	assert.Empty(t, sink.errors())
}

func TestConfirmUnknownID(t *testing.T) {
	engine, sink, _ := newTestEngine(t, llm.Config{}, Config{})

	engine.HandleConfirm("action_nope")

	errs := sink.errors()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "Invalid action: action_nope", errs[0].Message)
	}
	assert.Empty(t, sink.executed())
}

func TestConfirmExpiredProposal(t *testing.T) {
	engine, sink, clock := newTestEngine(t, llm.Config{}, Config{
		ValidityWindow: 30 * time.Second,
		ReplayWindow:   30 * time.Second,
	})

	engine.HandleMessage(context.Background(), "m1", "can you call me back")
	suggestions := sink.suggestions()
	if !assert.Len(t, suggestions, 1) {
		return
	}
	id := suggestions[0].SuggestionId

	clock.Advance(31 * time.Second)
	engine.HandleConfirm(id)

	errs := sink.errors()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "Action expired: "+id, errs[0].Message)
	}
	assert.Empty(t, sink.executed())

	// Expiry leaves no record, a retry reads as invalid rather than ignored.
	engine.HandleConfirm(id)
	errs = sink.errors()
	if assert.Len(t, errs, 2) {
		assert.Equal(t, "Invalid action: "+id, errs[1].Message)
	}
}

func TestConfirmAfterReplayWindowIsInvalid(t *testing.T) {
	engine, sink, clock := newTestEngine(t, llm.Config{}, Config{
		ValidityWindow: 30 * time.Second,
		ReplayWindow:   30 * time.Second,
	})

	engine.HandleMessage(context.Background(), "m1", "can you call me back")
	id := sink.suggestions()[0].SuggestionId

	engine.HandleConfirm(id)
	assert.Len(t, sink.executed(), 1)

	clock.Advance(31 * time.Second)
	engine.HandleConfirm(id)

	// The replay record is swept and nothing is pending anymore.
	assert.Len(t, sink.executed(), 1)
	errs := sink.errors()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "Invalid action: "+id, errs[0].Message)
	}
}

func TestIndependentWindows(t *testing.T) {
	// Short validity, long replay: a prompt confirm executes, and the
	// replay shield outlives the validity window.
	engine, sink, clock := newTestEngine(t, llm.Config{}, Config{
		ValidityWindow: 5 * time.Second,
		ReplayWindow:   60 * time.Second,
	})

	engine.HandleMessage(context.Background(), "m1", "can you call me back")
	id := sink.suggestions()[0].SuggestionId

	engine.HandleConfirm(id)
	clock.Advance(30 * time.Second)
	engine.HandleConfirm(id)

	executed := sink.executed()
	if assert.Len(t, executed, 2) {
		assert.Equal(t, true, executed[1].Result["ignored"])
	}
}

func TestNewProposalSupersedesPending(t *testing.T) {
	engine, sink, _ := newTestEngine(t, llm.Config{}, Config{})

	engine.HandleMessage(context.Background(), "m1", "can you call me back")
	engine.HandleMessage(context.Background(), "m2", "text me about the premium plan")

	suggestions := sink.suggestions()
	if !assert.Len(t, suggestions, 2) {
		return
	}

	engine.HandleConfirm(suggestions[0].SuggestionId)
	errs := sink.errors()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "Invalid action: "+suggestions[0].SuggestionId, errs[0].Message)
	}

	engine.HandleConfirm(suggestions[1].SuggestionId)
	assert.Len(t, sink.executed(), 1)
}

func TestCloseDropsEverything(t *testing.T) {
	engine, sink, _ := newTestEngine(t, llm.Config{}, Config{})

	engine.HandleMessage(context.Background(), "m1", "can you call me back")
	id := sink.suggestions()[0].SuggestionId

	engine.Close()

	before := len(sink.all())
	engine.HandleConfirm(id)
	engine.HandleMessage(context.Background(), "m2", "premium plan cost")
	assert.Len(t, sink.all(), before, "a closed engine emits nothing")
}

func TestNotifierObservesLifecycle(t *testing.T) {
	type stateChange struct {
		state     string
		lastQuery string
	}
	var (
		mu      sync.Mutex
		changes []stateChange
	)

	notifier := &funcNotifier{
		stateChanged: func(sessionID, state, lastQuery, pendingActionID string) {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, stateChange{state: state, lastQuery: lastQuery})
		},
	}

	sink := &recordingSink{}
	engine := NewEngine(
		"sess-test",
		sessionKB(),
		llm.NewTemplateComposer(llm.Config{}, logger.NopLogger{}),
		sink,
		notifier,
		newFakeClock(),
		Config{},
		logger.NopLogger{},
	)

	engine.HandleMessage(context.Background(), "m1", "premium plan cost")

	mu.Lock()
	defer mu.Unlock()
	if assert.Len(t, changes, 2) {
		assert.Equal(t, "STREAMING", changes[0].state)
		assert.Equal(t, "IDLE", changes[1].state)
		assert.Equal(t, "premium plan cost", changes[1].lastQuery)
	}
}

type funcNotifier struct {
	stateChanged   func(sessionID, state, lastQuery, pendingActionID string)
	actionExecuted func(sessionID, suggestionID, kind string, result map[string]interface{})
}

func (n *funcNotifier) StateChanged(sessionID, state, lastQuery, pendingActionID string) {
	if n.stateChanged != nil {
		n.stateChanged(sessionID, state, lastQuery, pendingActionID)
	}
}

func (n *funcNotifier) ActionExecuted(sessionID, suggestionID string, kind string, result map[string]interface{}) {
	if n.actionExecuted != nil {
		n.actionExecuted(sessionID, suggestionID, kind, result)
	}
}
