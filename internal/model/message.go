// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// A message is immutable once finalized. Assistant messages may exist
// transiently in draft form while their content is still streaming in;
// a draft is promoted to a finalized message exactly once.
type Message struct {
	// Identity
	ID             string `json:"ID"`
	ConversationID string `json:"ConversationID"`
	Role           Role   `json:"Role"`

	// Content
	Content    string `json:"Content"`
	RawContent string `json:"RawContent"`

	// Thinking is the optional preliminary reasoning stream that preceded
	// the response. ThinkingTime is the seconds spent producing it; it is
	// computed once at finalization and never recomputed.
	Thinking     *string  `json:"Thinking"`
	ThinkingTime *float64 `json:"ThinkingTime"`

	CreatedAt time.Time `json:"CreatedAt"`

	// Draft marks a streaming assistant message whose content is still
	// being appended to. Not persisted, not sent over the wire.
	Draft bool `json:"-"`
}

// NewUserMessage creates a finalized user message.
func NewUserMessage(conversationID, content string) *Message {
	return &Message{
		ID:             generateMessageID(),
		ConversationID: conversationID,
		Role:           RoleUser,
		Content:        content,
		RawContent:     content,
		CreatedAt:      time.Now(),
	}
}

// NewDraftAssistantMessage creates an assistant message in draft form.
// The caller appends streamed content and eventually promotes it with
// Finalize.
func NewDraftAssistantMessage(conversationID string) *Message {
	return &Message{
		ID:             generateMessageID(),
		ConversationID: conversationID,
		Role:           RoleAssistant,
		CreatedAt:      time.Now(),
		Draft:          true,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Finalize promotes a draft message with its final content and thinking
// information. Finalizing a non-draft message is a no-op.
func (m *Message) Finalize(content string, thinking *string, thinkingTime *float64) {
	if !m.Draft {
		return
	}
	m.Content = content
	m.RawContent = content
	m.Thinking = thinking
	m.ThinkingTime = thinkingTime
	m.Draft = false
}

// HasThinking returns true if the message carries a thinking trace.
func (m *Message) HasThinking() bool {
	return m.Thinking != nil && *m.Thinking != ""
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// Clone returns a copy of the message.
func (m *Message) Clone() *Message {
	clone := *m
	if m.Thinking != nil {
		t := *m.Thinking
		clone.Thinking = &t
	}
	if m.ThinkingTime != nil {
		tt := *m.ThinkingTime
		clone.ThinkingTime = &tt
	}
	return &clone
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	return uuid.NewString()
}

// StringPtr returns a pointer to s, or nil if s is empty or whitespace.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}
