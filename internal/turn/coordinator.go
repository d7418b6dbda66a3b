// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/tinychat-tui/internal/model"
	"github.com/jeranaias/tinychat-tui/internal/protocol"
	"github.com/jeranaias/tinychat-tui/internal/store"
	"github.com/jeranaias/tinychat-tui/internal/transport"
)

// =============================================================================
// TRANSPORT DEPENDENCY
// =============================================================================

// Transport is the slice of the connection manager the coordinator needs.
// *transport.Manager satisfies it.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	IsConnected() bool
}

// =============================================================================
// CALLBACKS
// =============================================================================

// Callbacks deliver turn lifecycle notifications to the UI layer. All
// callbacks fire on the event-delivery goroutine and must not block.
// Any field may be nil.
type Callbacks struct {
	// OnActivity fires whenever the visible shape of the active turn
	// changes: state transitions and thinking text growth. It also fires
	// once with StateIdle when the turn ends.
	OnActivity func(Activity)

	// OnConversationStarted fires when the server assigns an id to a
	// conversation opened by StartConversation, after the record exists
	// in the store. The UI uses it to focus the new conversation.
	OnConversationStarted func(conversationID string)

	// OnConversationResumed fires when the server confirms a resume.
	OnConversationResumed func(conversationID string)

	// OnTurnDone fires after a successful turn is finalized.
	OnTurnDone func(conversationID string)

	// OnTurnError fires after a turn fails, with the terminal *Error.
	OnTurnError func(err *Error)
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator reconciles the event stream into conversation records. It
// enforces at most one turn in flight, owns the turn's transient buffers,
// and is the only writer of streamed assistant content into the store.
type Coordinator struct {
	transport Transport
	store     *store.Store
	logger    zerolog.Logger
	callbacks Callbacks

	mu    sync.Mutex
	state State
	turn  *Turn

	now func() time.Time
}

// NewCoordinator creates a coordinator bound to a transport and store.
func NewCoordinator(tr Transport, st *store.Store, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		transport: tr,
		store:     st,
		logger:    logger.With().Str("component", "turn").Logger(),
		now:       time.Now,
	}
}

// SetCallbacks installs UI notification callbacks. Call before wiring the
// coordinator to the transport.
func (c *Coordinator) SetCallbacks(cb Callbacks) {
	c.callbacks = cb
}

// State returns the current turn state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns a snapshot of the in-flight turn for UI indicators, or
// false when idle.
func (c *Coordinator) Active() (Activity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.turn == nil {
		return Activity{}, false
	}
	return c.activityLocked(), true
}

func (c *Coordinator) activityLocked() Activity {
	a := Activity{State: c.state}
	if c.turn != nil {
		a.ConversationID = c.turn.ConversationID
		a.Thinking = c.turn.thinking.String()
	}
	return a
}

// =============================================================================
// INTENTS
// =============================================================================

// StartConversation opens a new conversation with the first user message.
// The conversation record is created only when the server confirms with
// conversation_started; nothing is inserted on failure.
func (c *Coordinator) StartConversation(ctx context.Context, modelID, content string) error {
	if modelID == "" {
		return ErrNoModelSelected
	}
	data, err := protocol.EncodeIntent(protocol.StartConversation{Model: modelID, Message: content})
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.turn = &Turn{Model: modelID, UserContent: content, startedNew: true}
	c.state = StatePending
	c.mu.Unlock()

	return c.dispatch(ctx, data)
}

// ResumeConversation asks the server to reload an existing conversation's
// context. The turn completes on the server's confirmation; the local
// record is not mutated.
func (c *Coordinator) ResumeConversation(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return ErrNoActiveConversation
	}
	data, err := protocol.EncodeIntent(protocol.ResumeConversation{ConversationID: conversationID})
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.turn = &Turn{ConversationID: conversationID, resume: true}
	c.state = StatePending
	c.mu.Unlock()

	return c.dispatch(ctx, data)
}

// SendMessage sends a user message on an existing conversation. The user
// message is appended to the conversation optimistically, before any
// server acknowledgment, and is never retracted: a later failure affects
// only the assistant's reply.
func (c *Coordinator) SendMessage(ctx context.Context, conversationID, content, modelID string) error {
	if conversationID == "" {
		return ErrNoActiveConversation
	}
	if modelID == "" {
		return ErrNoModelSelected
	}
	data, err := protocol.EncodeIntent(protocol.SendMessage{
		ConversationID: conversationID,
		Message:        content,
		Model:          modelID,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	userMsg := model.NewUserMessage(conversationID, content)
	if err := c.store.AppendMessage(conversationID, userMsg); err != nil {
		c.mu.Unlock()
		return err
	}
	c.turn = &Turn{ConversationID: conversationID, Model: modelID, UserContent: content}
	c.state = StatePending
	c.mu.Unlock()

	return c.dispatch(ctx, data)
}

// dispatch delivers an encoded intent. On failure the turn is rolled back
// to idle; an optimistic user message already in the store stays.
func (c *Coordinator) dispatch(ctx context.Context, data []byte) error {
	c.notifyActivity()
	if err := c.transport.Send(ctx, data); err != nil {
		c.logger.Warn().Err(err).Msg("intent send failed")
		c.mu.Lock()
		c.turn = nil
		c.state = StateIdle
		c.mu.Unlock()
		c.notifyActivity()
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

// =============================================================================
// EVENT HANDLING
// =============================================================================

// HandleFrame is the transport frame handler. Frames are delivered
// serially, so event processing needs no ordering logic beyond append.
func (c *Coordinator) HandleFrame(data []byte) {
	ev, err := protocol.DecodeEvent(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("discarding malformed frame")
		return
	}
	if unknown, ok := ev.(protocol.UnknownEvent); ok {
		c.logger.Warn().Str("type", unknown.Type).Msg("ignoring unknown event type")
		return
	}
	c.handleEvent(ev)
}

// HandleLifecycle is the transport lifecycle handler. Connection loss
// while a turn is in flight terminates the turn; the reconnect schedule
// itself is the transport's business.
func (c *Coordinator) HandleLifecycle(ev transport.LifecycleEvent) {
	if ev.Kind != transport.LifecycleDisconnected {
		return
	}
	c.mu.Lock()
	if c.turn == nil {
		c.mu.Unlock()
		return
	}
	turnErr := c.failLocked("connection lost")
	turnErr.Disconnected = true
	c.mu.Unlock()

	c.notifyActivity()
	if c.callbacks.OnTurnError != nil {
		c.callbacks.OnTurnError(turnErr)
	}
}

func (c *Coordinator) handleEvent(ev protocol.Event) {
	c.mu.Lock()
	if c.turn == nil {
		c.mu.Unlock()
		c.logger.Debug().Type("event", ev).Msg("dropping event with no turn in flight")
		return
	}

	switch e := ev.(type) {
	case protocol.ConversationStarted:
		c.handleStartedLocked(e)

	case protocol.ConversationResumed:
		c.handleResumedLocked(e)

	case protocol.ThinkingStart:
		if !c.turn.thinkingObserved {
			c.turn.thinkingObserved = true
			c.turn.thinkingStart = c.now()
		}
		c.state = StateThinking
		c.mu.Unlock()
		c.notifyActivity()

	case protocol.ThinkingChunk:
		c.handleThinkingChunkLocked(e)

	case protocol.ThinkingEnd:
		c.endThinkingLocked()
		c.mu.Unlock()
		c.notifyActivity()

	case protocol.ResponseChunk:
		c.handleResponseChunkLocked(e)

	case protocol.Done:
		c.handleDoneLocked()

	case protocol.ErrorEvent:
		turnErr := c.failLocked(e.Message)
		c.mu.Unlock()
		c.notifyActivity()
		if c.callbacks.OnTurnError != nil {
			c.callbacks.OnTurnError(turnErr)
		}

	default:
		c.mu.Unlock()
	}
}

// handleStartedLocked creates the confirmed conversation record with the
// optimistic user message already finalized inside it. Unlocks c.mu.
func (c *Coordinator) handleStartedLocked(e protocol.ConversationStarted) {
	if !c.turn.startedNew || c.turn.ConversationID != "" {
		c.mu.Unlock()
		c.logger.Warn().Str("conversation_id", e.ConversationID).
			Msg("unexpected conversation_started")
		return
	}
	c.turn.ConversationID = e.ConversationID
	conv := model.NewConversation(e.ConversationID, c.turn.Model, c.turn.UserContent)
	conv.AppendMessage(model.NewUserMessage(e.ConversationID, c.turn.UserContent))
	c.store.CreateConversation(conv)
	c.mu.Unlock()

	c.notifyActivity()
	if c.callbacks.OnConversationStarted != nil {
		c.callbacks.OnConversationStarted(e.ConversationID)
	}
}

// handleResumedLocked completes a confirm-only resume turn. Unlocks c.mu.
func (c *Coordinator) handleResumedLocked(e protocol.ConversationResumed) {
	if !c.turn.resume {
		c.mu.Unlock()
		c.logger.Warn().Str("conversation_id", e.ConversationID).
			Msg("unexpected conversation_resumed")
		return
	}
	c.turn = nil
	c.state = StateIdle
	c.mu.Unlock()

	c.notifyActivity()
	if c.callbacks.OnConversationResumed != nil {
		c.callbacks.OnConversationResumed(e.ConversationID)
	}
}

// handleThinkingChunkLocked appends thinking text. Whitespace-only chunks
// carry no information and are dropped. Unlocks c.mu.
func (c *Coordinator) handleThinkingChunkLocked(e protocol.ThinkingChunk) {
	// tolerate a stream that skips thinking_start
	if !c.turn.thinkingObserved {
		c.turn.thinkingObserved = true
		c.turn.thinkingStart = c.now()
	}
	c.state = StateThinking
	if strings.TrimSpace(e.Content) != "" {
		c.turn.thinking.WriteString(e.Content)
	}
	c.mu.Unlock()
	c.notifyActivity()
}

// handleResponseChunkLocked appends response text, creating the turn's
// single draft message on the first chunk. A response chunk arriving
// before thinking_end implies the thinking stream is over. Unlocks c.mu.
func (c *Coordinator) handleResponseChunkLocked(e protocol.ResponseChunk) {
	if c.state == StateThinking {
		c.endThinkingLocked()
	}
	c.state = StateResponding

	if c.turn.ConversationID == "" {
		// a new conversation's content can only land after conversation_started
		c.mu.Unlock()
		c.logger.Warn().Msg("dropping response chunk with no conversation id")
		return
	}

	c.turn.response.WriteString(e.Content)
	if c.turn.DraftMessageID == "" {
		draft := model.NewDraftAssistantMessage(c.turn.ConversationID)
		if err := c.store.AppendMessage(c.turn.ConversationID, draft); err != nil {
			c.mu.Unlock()
			c.logger.Error().Err(err).Msg("failed to insert draft message")
			return
		}
		c.turn.DraftMessageID = draft.ID
	}
	convID, msgID, content := c.turn.ConversationID, c.turn.DraftMessageID, c.turn.response.String()
	c.mu.Unlock()

	if err := c.store.UpdateDraftContent(convID, msgID, content); err != nil {
		c.logger.Error().Err(err).Msg("failed to update draft content")
	}
	c.notifyActivity()
}

// handleDoneLocked finalizes the turn. A done with no streamed response
// produces no assistant message. Unlocks c.mu.
func (c *Coordinator) handleDoneLocked() {
	t := c.turn
	c.turn = nil
	c.state = StateIdle

	if t.DraftMessageID == "" {
		c.mu.Unlock()
		c.logger.Debug().Str("conversation_id", t.ConversationID).
			Msg("turn completed without response content")
	} else {
		thinking := model.StringPtr(t.thinking.String())
		thinkingTime := t.thinkingSeconds(c.now())
		err := c.store.FinalizeMessage(t.ConversationID, t.DraftMessageID,
			t.response.String(), thinking, thinkingTime)
		c.mu.Unlock()
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to finalize message")
		}
	}

	c.notifyActivity()
	if c.callbacks.OnTurnDone != nil {
		c.callbacks.OnTurnDone(t.ConversationID)
	}
}

// failLocked terminates the active turn. A partially streamed draft is
// finalized with whatever content it already holds, so nothing the user
// saw disappears; the transient thinking buffer is discarded. Caller
// holds c.mu and still owns unlocking it.
func (c *Coordinator) failLocked(message string) *Error {
	t := c.turn
	c.turn = nil
	c.state = StateIdle

	if t.DraftMessageID != "" {
		if err := c.store.FinalizeMessage(t.ConversationID, t.DraftMessageID,
			t.response.String(), nil, nil); err != nil {
			c.logger.Error().Err(err).Msg("failed to finalize partial draft")
		}
	}
	c.logger.Warn().Str("conversation_id", t.ConversationID).Str("message", message).
		Msg("turn failed")
	return &Error{ConversationID: t.ConversationID, Message: message}
}

// endThinkingLocked stamps the end of the thinking stream exactly once.
func (c *Coordinator) endThinkingLocked() {
	if c.turn.thinkingObserved && c.turn.thinkingEnd.IsZero() {
		c.turn.thinkingEnd = c.now()
	}
	c.state = StateResponding
}

func (c *Coordinator) notifyActivity() {
	if c.callbacks.OnActivity == nil {
		return
	}
	c.mu.Lock()
	a := c.activityLocked()
	c.mu.Unlock()
	c.callbacks.OnActivity(a)
}
