// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tinychat-tui/internal/model"
	"github.com/jeranaias/tinychat-tui/internal/store"
	"github.com/jeranaias/tinychat-tui/internal/transport"
	"github.com/jeranaias/tinychat-tui/internal/turn"
)

// =============================================================================
// EVENT BRIDGE
// =============================================================================

// Events carries notifications from the store, coordinator, and transport
// goroutines into the Bubble Tea update loop. Push never blocks; under
// backpressure older notifications are dropped, which is safe because every
// consumer re-reads current state rather than replaying deltas.
type Events struct {
	ch chan tea.Msg
}

// NewEvents creates the bridge.
func NewEvents() *Events {
	return &Events{ch: make(chan tea.Msg, 64)}
}

// Push enqueues a message for the update loop.
func (e *Events) Push(msg tea.Msg) {
	select {
	case e.ch <- msg:
	default:
	}
}

// Wait returns a command that delivers the next pushed message.
func (e *Events) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-e.ch
	}
}

// =============================================================================
// PUSHED MESSAGES
// =============================================================================

// StoreUpdatedMsg carries a fresh store snapshot.
type StoreUpdatedMsg struct {
	State store.State
}

// ActivityMsg carries the live shape of the in-flight turn.
type ActivityMsg struct {
	Activity turn.Activity
}

// ConversationStartedMsg fires when the server confirms a new conversation.
type ConversationStartedMsg struct {
	ID string
}

// ConversationResumedMsg fires when the server confirms a resume.
type ConversationResumedMsg struct {
	ID string
}

// TurnDoneMsg fires after a successful turn.
type TurnDoneMsg struct {
	ID string
}

// TurnFailedMsg fires after a failed turn.
type TurnFailedMsg struct {
	Err *turn.Error
}

// ConnectionMsg carries transport lifecycle changes.
type ConnectionMsg struct {
	Event transport.LifecycleEvent
}

// =============================================================================
// COMMAND RESULT MESSAGES
// =============================================================================

// seedLoadedMsg is the result of the initial REST fetch.
type seedLoadedMsg struct {
	conversations []*model.Conversation
	models        []model.ModelInfo
	err           error
}

// historyLoadedMsg is the result of opening a conversation.
type historyLoadedMsg struct {
	conversation *model.Conversation
	err          error
}

// conversationDeletedMsg is the result of a delete request.
type conversationDeletedMsg struct {
	id  string
	err error
}

// intentResultMsg reports a rejected or failed intent; nil err means the
// intent was dispatched.
type intentResultMsg struct {
	err error
}

// connectResultMsg reports the initial connection attempt.
type connectResultMsg struct {
	err error
}
