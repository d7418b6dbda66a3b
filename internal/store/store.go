// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the client-side conversation and model state.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/tinychat-tui/internal/model"
)

// Errors returned by store mutations.
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrDraftExists          = errors.New("conversation already has a draft message")
)

// =============================================================================
// STATE SNAPSHOT
// =============================================================================

// State is an immutable snapshot of the store. Readers receive snapshots;
// they never observe a half-updated record because mutations replace
// cloned records instead of editing published ones.
type State struct {
	// Conversations are ordered most recently updated first.
	Conversations []*model.Conversation

	// Models available on the server.
	Models []model.ModelInfo
}

// Conversation returns the conversation with the given id, or nil.
func (s State) Conversation(id string) *model.Conversation {
	for _, conv := range s.Conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// =============================================================================
// STORE
// =============================================================================

// Subscriber receives a state snapshot after every mutation.
type Subscriber func(State)

// Store is the single authoritative container for conversation and model
// records. All mutations funnel through its entry points; UI code reads
// snapshots and never mutates records directly.
type Store struct {
	mu            sync.Mutex
	conversations []*model.Conversation
	models        []model.ModelInfo
	subscribers   map[int]Subscriber
	nextSubID     int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		subscribers: make(map[int]Subscriber),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked builds a State. Caller must hold mu. The slices are
// copied so later mutations cannot slide under a held snapshot.
func (s *Store) snapshotLocked() State {
	convs := make([]*model.Conversation, len(s.conversations))
	copy(convs, s.conversations)
	models := make([]model.ModelInfo, len(s.models))
	copy(models, s.models)
	return State{Conversations: convs, Models: models}
}

// Subscribe registers a subscriber and returns an unsubscribe function.
// Subscribers are invoked synchronously after each mutation.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// notifyLocked snapshots state and returns the notification closure to run
// after the lock is released.
func (s *Store) notifyLocked() func() {
	state := s.snapshotLocked()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return func() {
		for _, fn := range subs {
			fn(state)
		}
	}
}

// =============================================================================
// SEEDING
// =============================================================================

// SetConversations replaces the conversation list, normally from the
// GET /api/conversations seed at startup. The list is ordered most
// recently updated first.
func (s *Store) SetConversations(convs []*model.Conversation) {
	sorted := make([]*model.Conversation, len(convs))
	copy(sorted, convs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	s.mu.Lock()
	s.conversations = sorted
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SetModels replaces the model list.
func (s *Store) SetModels(models []model.ModelInfo) {
	s.mu.Lock()
	s.models = models
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SetMessages replaces a conversation's message history, normally from a
// lazy GET /api/conversations/{id} fetch. The conversation keeps its place
// in the list; loading history is not a record mutation by the core.
func (s *Store) SetMessages(conversationID string, msgs []*model.Message) error {
	s.mu.Lock()
	idx := s.indexLocked(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	clone := s.conversations[idx].Clone()
	clone.Messages = msgs
	s.conversations[idx] = clone
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// =============================================================================
// CORE MUTATIONS
// =============================================================================

// CreateConversation prepends a new conversation. Only the turn coordinator
// creates conversations, on a conversation_started event.
func (s *Store) CreateConversation(conv *model.Conversation) {
	s.mu.Lock()
	next := make([]*model.Conversation, 0, len(s.conversations)+1)
	next = append(next, conv)
	next = append(next, s.conversations...)
	s.conversations = next
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// AppendMessage adds a message to a conversation and moves the conversation
// to the front of the list. Appending a second draft while one is already
// in progress is rejected.
func (s *Store) AppendMessage(conversationID string, msg *model.Message) error {
	s.mu.Lock()
	idx := s.indexLocked(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	conv := s.conversations[idx]
	if msg.Draft && conv.Draft() != nil {
		s.mu.Unlock()
		return ErrDraftExists
	}

	clone := conv.Clone()
	clone.AppendMessage(msg)
	s.promoteLocked(idx, clone)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// UpdateDraftContent replaces the content of an in-progress draft message.
// The draft keeps its identity; chunks accumulate against the same record.
func (s *Store) UpdateDraftContent(conversationID, messageID, content string) error {
	return s.updateMessage(conversationID, messageID, func(msg *model.Message) {
		msg.Content = content
		msg.RawContent = content
	})
}

// FinalizeMessage promotes a draft message with its final content and
// thinking information. The promotion happens exactly once; a finalized
// message is immutable afterwards.
func (s *Store) FinalizeMessage(conversationID, messageID, content string, thinking *string, thinkingTime *float64) error {
	return s.updateMessage(conversationID, messageID, func(msg *model.Message) {
		msg.Finalize(content, thinking, thinkingTime)
	})
}

// RemoveConversation deletes a conversation from the list.
func (s *Store) RemoveConversation(conversationID string) error {
	s.mu.Lock()
	idx := s.indexLocked(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	next := make([]*model.Conversation, 0, len(s.conversations)-1)
	next = append(next, s.conversations[:idx]...)
	next = append(next, s.conversations[idx+1:]...)
	s.conversations = next
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// updateMessage applies fn to a cloned copy of one message and republishes
// the conversation at the front of the list.
func (s *Store) updateMessage(conversationID, messageID string, fn func(*model.Message)) error {
	s.mu.Lock()
	idx := s.indexLocked(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	clone := s.conversations[idx].Clone()
	msg := clone.FindMessage(messageID)
	if msg == nil {
		s.mu.Unlock()
		return ErrMessageNotFound
	}
	fn(msg)
	clone.UpdatedAt = time.Now()

	s.promoteLocked(idx, clone)
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// promoteLocked replaces the conversation at idx with the clone and moves
// it to the front, keeping the most recently updated conversation first.
// Caller must hold mu.
func (s *Store) promoteLocked(idx int, clone *model.Conversation) {
	next := make([]*model.Conversation, 0, len(s.conversations))
	next = append(next, clone)
	next = append(next, s.conversations[:idx]...)
	next = append(next, s.conversations[idx+1:]...)
	s.conversations = next
}

// indexLocked returns the index of a conversation, or -1. Caller must
// hold mu.
func (s *Store) indexLocked(conversationID string) int {
	for i, conv := range s.conversations {
		if conv.ID == conversationID {
			return i
		}
	}
	return -1
}
