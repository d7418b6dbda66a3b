// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol maps raw socket frames to typed events and intents.
package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

// =============================================================================
// INTENT ENCODING TESTS
// =============================================================================

func TestEncodeIntent_StartConversation(t *testing.T) {
	data, err := EncodeIntent(StartConversation{Model: "llama3", Message: "hi"})
	if err != nil {
		t.Fatalf("EncodeIntent failed: %v", err)
	}

	var frame map[string]string
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if frame["type"] != "start_conversation" {
		t.Errorf("type = %q, want 'start_conversation'", frame["type"])
	}
	if frame["model"] != "llama3" || frame["message"] != "hi" {
		t.Errorf("frame = %v", frame)
	}
}

func TestEncodeIntent_ResumeConversation(t *testing.T) {
	data, err := EncodeIntent(ResumeConversation{ConversationID: "abc"})
	if err != nil {
		t.Fatalf("EncodeIntent failed: %v", err)
	}

	var frame map[string]string
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if frame["type"] != "resume_conversation" {
		t.Errorf("type = %q, want 'resume_conversation'", frame["type"])
	}
	if frame["convo_id"] != "abc" {
		t.Errorf("convo_id = %q, want 'abc'", frame["convo_id"])
	}
}

func TestEncodeIntent_SendMessage(t *testing.T) {
	data, err := EncodeIntent(SendMessage{ConversationID: "abc", Message: "more", Model: "llama3"})
	if err != nil {
		t.Fatalf("EncodeIntent failed: %v", err)
	}

	var frame map[string]string
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if frame["type"] != "message" {
		t.Errorf("type = %q, want 'message'", frame["type"])
	}
	if frame["convo_id"] != "abc" || frame["message"] != "more" || frame["model"] != "llama3" {
		t.Errorf("frame = %v", frame)
	}
}

func TestEncodeIntent_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		intent    Intent
		wantField string
	}{
		{"start without model", StartConversation{Message: "hi"}, "model"},
		{"start without message", StartConversation{Model: "llama3"}, "message"},
		{"resume without id", ResumeConversation{}, "convo_id"},
		{"message without id", SendMessage{Message: "hi", Model: "m"}, "convo_id"},
		{"message without text", SendMessage{ConversationID: "abc", Model: "m"}, "message"},
		{"message without model", SendMessage{ConversationID: "abc", Message: "hi"}, "model"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := EncodeIntent(tc.intent)
			if data != nil {
				t.Error("no frame should be produced for an invalid intent")
			}

			var invalid *InvalidIntentError
			if !errors.As(err, &invalid) {
				t.Fatalf("error = %v, want *InvalidIntentError", err)
			}
			if invalid.Field != tc.wantField {
				t.Errorf("Field = %q, want %q", invalid.Field, tc.wantField)
			}
		})
	}
}

// =============================================================================
// EVENT DECODING TESTS
// =============================================================================

func TestDecodeEvent_ClosedSet(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Event
	}{
		{"thinking start", `{"type":"thinking_start"}`, ThinkingStart{}},
		{"thinking chunk", `{"type":"thinking_chunk","content":"hmm"}`, ThinkingChunk{Content: "hmm"}},
		{"thinking end", `{"type":"thinking_end"}`, ThinkingEnd{}},
		{"conversation started", `{"type":"conversation_started","content":"abc"}`, ConversationStarted{ConversationID: "abc"}},
		{"conversation resumed", `{"type":"conversation_resumed","content":"abc"}`, ConversationResumed{ConversationID: "abc"}},
		{"response chunk", `{"type":"response_chunk","content":"hi"}`, ResponseChunk{Content: "hi"}},
		{"done", `{"type":"done","content":""}`, Done{}},
		{"error", `{"type":"error","content":"boom"}`, ErrorEvent{Message: "boom"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeEvent([]byte(tc.raw))
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("DecodeEvent = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestDecodeEvent_UnknownType(t *testing.T) {
	raw := `{"type":"telemetry","content":"xyz"}`
	got, err := DecodeEvent([]byte(raw))
	if err != nil {
		t.Fatalf("unknown discriminators must not be errors: %v", err)
	}

	unknown, ok := got.(UnknownEvent)
	if !ok {
		t.Fatalf("DecodeEvent = %#v, want UnknownEvent", got)
	}
	if unknown.Type != "telemetry" {
		t.Errorf("Type = %q, want 'telemetry'", unknown.Type)
	}
	if string(unknown.Raw) != raw {
		t.Errorf("Raw = %q, want original frame", unknown.Raw)
	}
}

func TestDecodeEvent_MalformedFrame(t *testing.T) {
	got, err := DecodeEvent([]byte(`{not json`))
	if got != nil {
		t.Errorf("event = %#v, want nil", got)
	}

	var malformed *MalformedFrameError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want *MalformedFrameError", err)
	}
	if string(malformed.Raw) != `{not json` {
		t.Errorf("Raw = %q", malformed.Raw)
	}
}
