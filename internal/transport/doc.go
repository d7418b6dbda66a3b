// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the WebSocket connection to the chat server.
//
// The Manager maintains exactly one logical connection and its lifecycle:
// connect, reconnect with exponential backoff after unexpected closures,
// and disconnect. It moves raw frames in both directions and knows nothing
// about the chat protocol; decoding lives in the protocol package.
//
// # Reconnection
//
// After an unexpected closure, attempt k is scheduled after
// base * growth^(k-1). Once MaxReconnectAttempts consecutive attempts have
// failed the manager stops scheduling and surfaces a terminal disconnected
// event; a later explicit Connect resets the counter. Successful
// connections and explicit Disconnect cancel any armed timer.
//
// # Delivery guarantees
//
// Inbound frames are read by a single goroutine per physical connection,
// so the frame handler observes them serially and in arrival order. This
// is the property the turn coordinator relies on to process events without
// sequence numbers or deduplication.
package transport
