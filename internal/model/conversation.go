// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"
)

// TitleMaxRunes is the maximum length of an auto-generated conversation
// title, measured in runes. Longer prompts are truncated with an ellipsis.
const TitleMaxRunes = 30

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a chat conversation with its history and metadata.
//
// The message sequence is insertion-ordered and never reordered. Records
// published to store subscribers must not be mutated in place; use Clone
// before modifying a conversation that readers may hold.
type Conversation struct {
	// Identity
	ID        string    `json:"ID"`
	Title     string    `json:"Title"`
	Model     string    `json:"Model"`
	CreatedAt time.Time `json:"CreatedAt"`
	UpdatedAt time.Time `json:"UpdatedAt"`

	// Messages
	Messages []*Message `json:"Messages"`
}

// NewConversation creates a conversation with a server-assigned ID. The
// title is derived from the first user prompt.
func NewConversation(id, modelName, firstUserContent string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        id,
		Title:     TitleFromPrompt(firstUserContent),
		Model:     modelName,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0, 2),
	}
}

// TitleFromPrompt derives a conversation title from the first user message:
// the first TitleMaxRunes runes, with "..." appended when truncated.
func TitleFromPrompt(content string) string {
	runes := []rune(content)
	if len(runes) <= TitleMaxRunes {
		return content
	}
	return string(runes[:TitleMaxRunes]) + "..."
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AppendMessage adds a message to the end of the conversation and bumps
// the updated timestamp.
func (c *Conversation) AppendMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// FindMessage returns the message with the given ID, or nil.
func (c *Conversation) FindMessage(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// Draft returns the in-progress assistant message, or nil if none exists.
// At most one draft exists per conversation at any instant.
func (c *Conversation) Draft() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Draft {
			return c.Messages[i]
		}
	}
	return nil
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// =============================================================================
// SERIALIZATION HELPERS
// =============================================================================

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Conversation"
}

// Preview returns a short preview of the conversation.
func (c *Conversation) Preview() string {
	if len(c.Messages) == 0 {
		return "Empty conversation"
	}
	return c.Messages[0].Preview(100)
}

// Clone creates a deep copy of the conversation. Store mutations operate
// on clones so that published records are never modified in place.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		Model:     c.Model,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Messages:  make([]*Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		clone.Messages[i] = msg.Clone()
	}
	return clone
}
