// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The Bubble Tea model composes a conversation sidebar, a message viewport
// with glamour-rendered assistant messages, a textarea composer, and a
// status bar. Store snapshots, turn activity, and transport lifecycle
// changes arrive through the Events bridge so that all mutation stays on
// the update loop.
//
// # Key Types
//
//   - Model: the Bubble Tea application model
//   - Events: channel bridge from background goroutines into the update loop
//   - Conductor / Seeder / Connector: the narrow dependency surfaces the
//     UI needs from the turn coordinator, REST client, and transport
package chat
