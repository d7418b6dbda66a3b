// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn drives the per-conversation request/response state machine.
package turn

import (
	"strings"
	"time"
)

// =============================================================================
// TURN STATE
// =============================================================================

// State is the phase of the active turn.
type State int

const (
	// StateIdle means no turn is in progress. The only state from which
	// intents may be issued.
	StateIdle State = iota

	// StatePending means an intent was sent and the coordinator is waiting
	// for the server's first event.
	StatePending

	// StateThinking means the server is streaming thinking chunks.
	StateThinking

	// StateResponding means the server is streaming response chunks.
	StateResponding
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateThinking:
		return "thinking"
	case StateResponding:
		return "responding"
	default:
		return "unknown"
	}
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is the ephemeral record of one request/response cycle. It exists
// from the moment an intent is issued until the terminal done/error event
// (or connection loss) and is never persisted.
type Turn struct {
	// ConversationID is empty for a new conversation until the server
	// assigns one via conversation_started.
	ConversationID string

	// Model and UserContent echo the intent that opened the turn.
	Model       string
	UserContent string

	// DraftMessageID pins the identity of the single draft assistant
	// message; chunks after the first update that record in place.
	DraftMessageID string

	// startedNew marks a turn opened by a start_conversation intent.
	// resume marks a confirm-only resume_conversation turn.
	startedNew bool
	resume     bool

	// Streaming buffers. Content accumulates strictly by append of
	// arrival-ordered chunks.
	thinking strings.Builder
	response strings.Builder

	thinkingObserved bool
	thinkingStart    time.Time
	thinkingEnd      time.Time
}

// thinkingSeconds computes the thinking duration once, at finalization.
// Returns nil when no thinking_start was observed for the turn.
func (t *Turn) thinkingSeconds(now time.Time) *float64 {
	if !t.thinkingObserved {
		return nil
	}
	end := t.thinkingEnd
	if end.IsZero() {
		// done arrived without an explicit thinking_end
		end = now
	}
	secs := end.Sub(t.thinkingStart).Seconds()
	if secs < 0 {
		secs = 0
	}
	return &secs
}

// =============================================================================
// ACTIVITY SNAPSHOT
// =============================================================================

// Activity is a read-only view of the active turn for UI indicators. It is
// keyed by conversation id so that switching conversations never shows an
// unrelated turn's live output.
type Activity struct {
	ConversationID string
	State          State
	Thinking       string
}
