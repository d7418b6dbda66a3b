// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol maps raw socket frames to typed events and intents.
//
// The wire protocol is asymmetric. Outbound intents form a closed set of
// three requests (start_conversation, resume_conversation, message), each a
// JSON object with a "type" discriminator. Inbound events form a closed set
// of eight frames ({type, content?}); the content field carries the
// conversation id for conversation_started/conversation_resumed and text for
// the chunk events.
//
// The decoder never panics on bad input: a frame that is not JSON yields a
// *MalformedFrameError, and a frame with an unrecognized discriminator
// yields an UnknownEvent value that consumers treat as a warning. Encoding
// fails fast with *InvalidIntentError before a malformed frame can reach
// the wire.
package protocol
