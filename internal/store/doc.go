// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the client-side conversation and model state.
//
// The Store is the single shared mutable resource in the application. All
// mutations go through named entry points that follow a reducer pattern:
// read the current record, build an updated clone, replace it in a new
// list. Published records are never edited in place, so a subscriber
// holding a snapshot can never observe a half-updated conversation.
//
// The conversation list is kept most-recently-updated-first whenever the
// core mutates it; loading message history for display does not reorder.
//
// Subscribers registered with Subscribe are notified synchronously with a
// fresh snapshot after every mutation, which is how the UI observes
// streaming updates.
package store
