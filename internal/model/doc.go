// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations, streamed messages, and server models.
//
// # Key Types
//
//   - Conversation: Container for a chat session with messages and metadata
//   - Message: Single message with role, content, and optional thinking trace
//   - ModelInfo: A model available on the server (name, id, parameter size)
//   - Role: Message role enumeration (user, assistant)
//
// # Draft Messages
//
// While an assistant response is streaming, its message exists in a draft
// state and its content is still incomplete. The turn coordinator promotes
// the draft exactly once, when the terminal event for the turn arrives:
//
//	msg := model.NewDraftAssistantMessage(convID)
//	// ... content accumulates ...
//	msg.Finalize(content, thinking, thinkingTime)
package model
