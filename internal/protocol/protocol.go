// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol maps raw socket frames to typed events and intents.
package protocol

import (
	"encoding/json"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// Frame discriminator values for outbound intents.
const (
	TypeStartConversation  = "start_conversation"
	TypeResumeConversation = "resume_conversation"
	TypeMessage            = "message"
)

// Frame discriminator values for inbound events.
const (
	TypeThinkingStart       = "thinking_start"
	TypeThinkingChunk       = "thinking_chunk"
	TypeThinkingEnd         = "thinking_end"
	TypeConversationStarted = "conversation_started"
	TypeConversationResumed = "conversation_resumed"
	TypeResponseChunk       = "response_chunk"
	TypeDone                = "done"
	TypeError               = "error"
)

// inboundFrame is the raw shape of every server frame: a discriminator and
// an optional content payload. For conversation_started/resumed the content
// carries the conversation id; for chunk events it carries text.
type inboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// =============================================================================
// OUTBOUND INTENTS
// =============================================================================

// Intent is one of the closed set of outbound requests: StartConversation,
// ResumeConversation, or SendMessage.
type Intent interface {
	// Kind returns the wire discriminator for the intent.
	Kind() string

	// validate reports the first missing required field, or "".
	validate() string
}

// StartConversation asks the server to create a conversation and answer the
// first message.
type StartConversation struct {
	Model   string `json:"model"`
	Message string `json:"message"`
}

// Kind returns the wire discriminator for the intent.
func (StartConversation) Kind() string { return TypeStartConversation }

func (i StartConversation) validate() string {
	if i.Model == "" {
		return "model"
	}
	if i.Message == "" {
		return "message"
	}
	return ""
}

// ResumeConversation tells the server which existing conversation subsequent
// messages belong to.
type ResumeConversation struct {
	ConversationID string `json:"convo_id"`
}

// Kind returns the wire discriminator for the intent.
func (ResumeConversation) Kind() string { return TypeResumeConversation }

func (i ResumeConversation) validate() string {
	if i.ConversationID == "" {
		return "convo_id"
	}
	return ""
}

// SendMessage submits a follow-up message to an active conversation.
type SendMessage struct {
	ConversationID string `json:"convo_id"`
	Message        string `json:"message"`
	Model          string `json:"model"`
}

// Kind returns the wire discriminator for the intent.
func (SendMessage) Kind() string { return TypeMessage }

func (i SendMessage) validate() string {
	if i.ConversationID == "" {
		return "convo_id"
	}
	if i.Message == "" {
		return "message"
	}
	if i.Model == "" {
		return "model"
	}
	return ""
}

// EncodeIntent renders an intent as a wire frame. It fails fast with an
// *InvalidIntentError when a required field is missing, so a malformed frame
// is never put on the wire.
func EncodeIntent(intent Intent) ([]byte, error) {
	if field := intent.validate(); field != "" {
		return nil, &InvalidIntentError{Intent: intent.Kind(), Field: field}
	}

	// The discriminator is injected alongside the intent's own fields.
	var payload map[string]interface{}
	raw, err := json.Marshal(intent)
	if err != nil {
		return nil, &InvalidIntentError{Intent: intent.Kind(), Field: "", Cause: err}
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &InvalidIntentError{Intent: intent.Kind(), Field: "", Cause: err}
	}
	payload["type"] = intent.Kind()

	return json.Marshal(payload)
}

// =============================================================================
// INBOUND EVENTS
// =============================================================================

// Event is one of the closed set of decoded server events. UnknownEvent is
// the catch-all for frames whose discriminator is not recognized; it flows
// through the pipeline as a non-fatal warning instead of an error.
type Event interface {
	isEvent()
}

// ThinkingStart marks the beginning of the model's thinking stream.
type ThinkingStart struct{}

// ThinkingChunk carries a fragment of thinking text.
type ThinkingChunk struct {
	Content string
}

// ThinkingEnd marks the end of the thinking stream.
type ThinkingEnd struct{}

// ConversationStarted confirms a new conversation and carries its id.
type ConversationStarted struct {
	ConversationID string
}

// ConversationResumed confirms the server accepted a resume request.
type ConversationResumed struct {
	ConversationID string
}

// ResponseChunk carries a fragment of response text.
type ResponseChunk struct {
	Content string
}

// Done is the terminal event of a successful turn.
type Done struct{}

// ErrorEvent is the terminal event of a failed turn.
type ErrorEvent struct {
	Message string
}

// UnknownEvent wraps a frame whose discriminator is outside the closed set.
type UnknownEvent struct {
	Type string
	Raw  []byte
}

func (ThinkingStart) isEvent()       {}
func (ThinkingChunk) isEvent()       {}
func (ThinkingEnd) isEvent()         {}
func (ConversationStarted) isEvent() {}
func (ConversationResumed) isEvent() {}
func (ResponseChunk) isEvent()       {}
func (Done) isEvent()                {}
func (ErrorEvent) isEvent()          {}
func (UnknownEvent) isEvent()        {}

// DecodeEvent parses a raw frame into a typed event. A frame that is not
// valid JSON yields a *MalformedFrameError; a valid frame with an unknown
// discriminator yields UnknownEvent. Neither outcome may crash the pipeline.
func DecodeEvent(data []byte) (Event, error) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, &MalformedFrameError{Raw: data, Cause: err}
	}

	switch frame.Type {
	case TypeThinkingStart:
		return ThinkingStart{}, nil
	case TypeThinkingChunk:
		return ThinkingChunk{Content: frame.Content}, nil
	case TypeThinkingEnd:
		return ThinkingEnd{}, nil
	case TypeConversationStarted:
		return ConversationStarted{ConversationID: frame.Content}, nil
	case TypeConversationResumed:
		return ConversationResumed{ConversationID: frame.Content}, nil
	case TypeResponseChunk:
		return ResponseChunk{Content: frame.Content}, nil
	case TypeDone:
		return Done{}, nil
	case TypeError:
		return ErrorEvent{Message: frame.Content}, nil
	default:
		return UnknownEvent{Type: frame.Type, Raw: data}, nil
	}
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// InvalidIntentError reports an outbound intent with a missing required
// field. The frame is never sent.
type InvalidIntentError struct {
	Intent string
	Field  string
	Cause  error
}

func (e *InvalidIntentError) Error() string {
	if e.Field != "" {
		return "invalid " + e.Intent + " intent: missing " + e.Field
	}
	return "invalid " + e.Intent + " intent"
}

func (e *InvalidIntentError) Unwrap() error {
	return e.Cause
}

// MalformedFrameError reports an inbound frame that could not be parsed.
// It is recovered silently by the consumer: logged, never fatal.
type MalformedFrameError struct {
	Raw   []byte
	Cause error
}

func (e *MalformedFrameError) Error() string {
	return "malformed frame: " + e.Cause.Error()
}

func (e *MalformedFrameError) Unwrap() error {
	return e.Cause
}
