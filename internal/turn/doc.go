// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn coordinates streamed server events into durable
// conversation records.
//
// A turn is one request/response cycle: it opens when an intent is issued
// and closes on done, a server error event, or connection loss. At most
// one turn is in flight at a time; intents issued while a turn is active
// are rejected with ErrBusy. The coordinator owns the turn's transient
// thinking and response buffers, creates at most one draft assistant
// message per turn, and finalizes it exactly once.
//
// Ordering relies on the transport delivering frames serially, so chunk
// reassembly is a plain append.
//
// # Key Types
//
//   - Coordinator: the state machine; wire HandleFrame and HandleLifecycle
//     into the transport manager
//   - Turn: the ephemeral record of the in-flight cycle
//   - Activity: read-only snapshot for UI turn indicators, keyed by
//     conversation id
//   - Callbacks: UI notification hooks
//   - Error: asynchronous turn failure
package turn
