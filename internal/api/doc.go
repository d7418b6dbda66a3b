// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chat server's REST API.
//
// The REST surface is the seeding side of the client: it lists and fetches
// durable conversation records, deletes conversations, and lists available
// models. All streaming content arrives over the WebSocket transport
// instead.
//
// # Key Types
//
//   - Client: the HTTP client; create with NewClient or NewClientWithConfig
//   - ClientConfig: base URL and timeout
//   - ClientError: typed error with an ErrorType category, plus sentinels
//     ErrUnreachable, ErrTimeout, ErrNotFound
package api
