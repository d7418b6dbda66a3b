// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable view components for the TUI.
//
// # Key Types
//
//   - Sidebar: the conversation list with cursor and busy markers
//   - StatusBar: connection state, model, and key hints footer
//   - Toast: transient error banner
//   - MarkdownRenderer: glamour-backed message rendering with raw fallback
package components
