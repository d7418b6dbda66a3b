// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import "errors"

// =============================================================================
// CALLER ERRORS
// =============================================================================

// Caller errors reject an intent synchronously. No conversation or turn
// state is mutated when one is returned, with one deliberate exception:
// a user message already inserted optimistically by SendMessage stays.
var (
	// ErrBusy is returned when a turn is already in flight.
	ErrBusy = errors.New("a turn is already in progress")

	// ErrNotConnected is returned when the transport could not deliver
	// the intent, including after its single automatic reconnect.
	ErrNotConnected = errors.New("not connected to server")

	// ErrNoModelSelected is returned when an intent requires a model
	// and none was provided.
	ErrNoModelSelected = errors.New("no model selected")

	// ErrNoActiveConversation is returned when an intent requires a
	// conversation id and none was provided.
	ErrNoActiveConversation = errors.New("no active conversation")
)

// =============================================================================
// TURN ERRORS
// =============================================================================

// Error is an asynchronous turn failure: a server error event or a
// connection loss while a turn was in flight. It terminates the turn but
// never retracts content already written to the conversation.
type Error struct {
	// ConversationID of the failed turn; empty if the server never
	// assigned one.
	ConversationID string

	// Message is the server-supplied description, or a local one for
	// connection loss.
	Message string

	// Disconnected is true when the failure was a transport loss rather
	// than a server error event.
	Disconnected bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return "turn failed"
	}
	return "turn failed: " + e.Message
}
