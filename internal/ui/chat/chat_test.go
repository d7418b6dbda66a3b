// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tinychat-tui/internal/config"
	"github.com/jeranaias/tinychat-tui/internal/model"
	"github.com/jeranaias/tinychat-tui/internal/store"
	"github.com/jeranaias/tinychat-tui/internal/transport"
	"github.com/jeranaias/tinychat-tui/internal/turn"
	"github.com/jeranaias/tinychat-tui/internal/ui/styles"
)

// =============================================================================
// STUBS
// =============================================================================

type stubConductor struct {
	started  []string // "model|content"
	resumed  []string
	sent     []string // "conv|content|model"
	rejectAs error
}

func (s *stubConductor) StartConversation(_ context.Context, modelID, content string) error {
	if s.rejectAs != nil {
		return s.rejectAs
	}
	s.started = append(s.started, modelID+"|"+content)
	return nil
}

func (s *stubConductor) ResumeConversation(_ context.Context, id string) error {
	s.resumed = append(s.resumed, id)
	return nil
}

func (s *stubConductor) SendMessage(_ context.Context, conversationID, content, modelID string) error {
	if s.rejectAs != nil {
		return s.rejectAs
	}
	s.sent = append(s.sent, conversationID+"|"+content+"|"+modelID)
	return nil
}

type stubSeeder struct {
	conversations []*model.Conversation
	full          map[string]*model.Conversation
	models        []model.ModelInfo
	deleted       []string
}

func (s *stubSeeder) ListConversations(context.Context) ([]*model.Conversation, error) {
	return s.conversations, nil
}

func (s *stubSeeder) GetConversation(_ context.Context, id string) (*model.Conversation, error) {
	if conv, ok := s.full[id]; ok {
		return conv, nil
	}
	return nil, errors.New("conversation not found")
}

func (s *stubSeeder) DeleteConversation(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubSeeder) ListModels(context.Context) ([]model.ModelInfo, error) {
	return s.models, nil
}

type stubConnector struct {
	state transport.State
}

func (s *stubConnector) Connect(context.Context) error { return nil }
func (s *stubConnector) State() transport.State        { return s.state }

// =============================================================================
// FIXTURES
// =============================================================================

func testModels() []model.ModelInfo {
	return []model.ModelInfo{
		{Name: "Llama 3", Model: "llama3:8b", Details: model.ModelDetails{ParameterSize: "8B"}},
		{Name: "Qwen 3", Model: "qwen3:4b", Details: model.ModelDetails{ParameterSize: "4B"}},
	}
}

func newTestApp(t *testing.T) (Model, *stubConductor, *stubSeeder) {
	t.Helper()
	conductor := &stubConductor{}
	seeder := &stubSeeder{models: testModels(), full: map[string]*model.Conversation{}}
	m := New(config.Default(), styles.NewTheme(), store.New(),
		conductor, seeder, &stubConnector{state: transport.StateConnected}, NewEvents())

	// size the layout and load the seed
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = resized.(Model)
	updated, _ := m.Update(seedLoadedMsg{models: seeder.models})
	return updated.(Model), conductor, seeder
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.Msg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "ctrl+n":
			msg = tea.KeyMsg{Type: tea.KeyCtrlN}
		case "ctrl+p":
			msg = tea.KeyMsg{Type: tea.KeyCtrlP}
		case "ctrl+d":
			msg = tea.KeyMsg{Type: tea.KeyCtrlD}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

// =============================================================================
// TESTS
// =============================================================================

func TestSeedSelectsDefaultModel(t *testing.T) {
	m, _, _ := newTestApp(t)
	if m.selectedModel.Model != "llama3:8b" {
		t.Errorf("selected model = %q, want first server model", m.selectedModel.Model)
	}
}

func TestSeedHonorsConfiguredModel(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultModel = "qwen3:4b"
	m := New(cfg, styles.NewTheme(), store.New(),
		&stubConductor{}, &stubSeeder{}, &stubConnector{}, NewEvents())
	updated, _ := m.Update(seedLoadedMsg{models: testModels()})
	m = updated.(Model)
	if m.selectedModel.Model != "qwen3:4b" {
		t.Errorf("selected model = %q, want configured qwen3:4b", m.selectedModel.Model)
	}
}

func TestSubmitStartsNewConversation(t *testing.T) {
	m, conductor, _ := newTestApp(t)
	m = typeText(t, m, "hello there")

	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	if msg, ok := cmd().(intentResultMsg); !ok || msg.err != nil {
		t.Fatalf("command result = %#v", msg)
	}
	if len(conductor.started) != 1 || conductor.started[0] != "llama3:8b|hello there" {
		t.Errorf("started = %v", conductor.started)
	}
	if m.input.Value() != "" {
		t.Errorf("composer not cleared: %q", m.input.Value())
	}
}

func TestSubmitOnActiveConversationSendsMessage(t *testing.T) {
	m, conductor, _ := newTestApp(t)
	m.activeConvID = "conv-1"
	m = typeText(t, m, "follow-up")

	_, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	cmd()
	if len(conductor.sent) != 1 || conductor.sent[0] != "conv-1|follow-up|llama3:8b" {
		t.Errorf("sent = %v", conductor.sent)
	}
}

func TestSubmitEmptyDoesNothing(t *testing.T) {
	m, conductor, _ := newTestApp(t)
	m = typeText(t, m, "   ")
	_, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Error("whitespace-only submit produced a command")
	}
	if len(conductor.started) != 0 {
		t.Errorf("started = %v", conductor.started)
	}
}

func TestSubmitWithoutModelShowsToast(t *testing.T) {
	m := New(config.Default(), styles.NewTheme(), store.New(),
		&stubConductor{}, &stubSeeder{}, &stubConnector{}, NewEvents())
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = resized.(Model)
	m = typeText(t, m, "hi")

	m, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Error("submit without model produced a command")
	}
	if !m.toast.Visible() {
		t.Error("expected toast about missing model")
	}
}

func TestBusyRejectionSurfacesToast(t *testing.T) {
	m, conductor, _ := newTestApp(t)
	conductor.rejectAs = turn.ErrBusy
	m = typeText(t, m, "too eager")

	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	result := cmd()
	updated, _ := m.Update(result)
	m = updated.(Model)
	if !m.toast.Visible() {
		t.Error("busy rejection did not surface a toast")
	}
}

func TestConversationStartedFocusesNewConversation(t *testing.T) {
	m, _, _ := newTestApp(t)
	updated, _ := m.Update(ConversationStartedMsg{ID: "conv-9"})
	m = updated.(Model)
	if m.activeConvID != "conv-9" {
		t.Errorf("activeConvID = %q, want conv-9", m.activeConvID)
	}
}

func TestSidebarEnterOpensConversation(t *testing.T) {
	m, conductor, seeder := newTestApp(t)

	conv := model.NewConversation("conv-1", "llama3:8b", "remembered chat")
	conv.AppendMessage(model.NewUserMessage("conv-1", "remembered chat"))
	seeder.full["conv-1"] = conv
	m.store.SetConversations([]*model.Conversation{conv.Clone()})
	updated, _ := m.Update(StoreUpdatedMsg{State: m.store.Snapshot()})
	m = updated.(Model)

	m, _ = press(t, m, "tab") // focus sidebar
	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("enter on sidebar produced no command")
	}
	result := cmd()
	updated, _ = m.Update(result)
	m = updated.(Model)

	if m.activeConvID != "conv-1" {
		t.Errorf("activeConvID = %q", m.activeConvID)
	}
	if len(conductor.resumed) != 1 || conductor.resumed[0] != "conv-1" {
		t.Errorf("resumed = %v", conductor.resumed)
	}
}

func TestDeleteClearsActiveConversation(t *testing.T) {
	m, _, _ := newTestApp(t)
	conv := model.NewConversation("conv-1", "llama3:8b", "doomed chat")
	m.store.SetConversations([]*model.Conversation{conv})
	m.activeConvID = "conv-1"

	updated, _ := m.Update(conversationDeletedMsg{id: "conv-1"})
	m = updated.(Model)
	if m.activeConvID != "" {
		t.Errorf("activeConvID = %q, want empty", m.activeConvID)
	}
	if m.store.Snapshot().Conversation("conv-1") != nil {
		t.Error("conversation still in store after delete")
	}
}

func TestTurnFailureShowsToast(t *testing.T) {
	m, _, _ := newTestApp(t)
	updated, _ := m.Update(TurnFailedMsg{Err: &turn.Error{ConversationID: "c", Message: "model exploded"}})
	m = updated.(Model)
	if !m.toast.Visible() {
		t.Error("turn failure did not surface a toast")
	}
}

func TestModelPicker(t *testing.T) {
	m, _, _ := newTestApp(t)

	m, _ = press(t, m, "ctrl+p")
	if !m.pickerOpen {
		t.Fatal("picker did not open")
	}
	m, _ = press(t, m, "down", "enter")
	if m.pickerOpen {
		t.Error("picker still open after selection")
	}
	if m.selectedModel.Model != "qwen3:4b" {
		t.Errorf("selected model = %q, want qwen3:4b", m.selectedModel.Model)
	}
}

func TestViewRendersConversation(t *testing.T) {
	m, _, _ := newTestApp(t)

	conv := model.NewConversation("conv-1", "llama3:8b", "rendering test")
	conv.AppendMessage(model.NewUserMessage("conv-1", "rendering test"))
	answer := model.NewDraftAssistantMessage("conv-1")
	answer.Finalize("an answer", model.StringPtr("brief thought"), model.Float64Ptr(2.5))
	conv.AppendMessage(answer)
	m.store.SetConversations([]*model.Conversation{conv})

	updated, _ := m.Update(StoreUpdatedMsg{State: m.store.Snapshot()})
	m = updated.(Model)
	m.activeConvID = "conv-1"
	m.refreshViewport()

	out := m.View()
	if !strings.Contains(out, "connected") {
		t.Errorf("view missing status bar:\n%s", out)
	}
	content := m.conversationView()
	if !strings.Contains(content, "rendering test") {
		t.Errorf("conversation view missing user message:\n%s", content)
	}
	if !strings.Contains(content, "Thought for 2.5s") {
		t.Errorf("conversation view missing thinking header:\n%s", content)
	}
}

func TestLiveThinkingIndicator(t *testing.T) {
	m, _, _ := newTestApp(t)
	conv := model.NewConversation("conv-1", "llama3:8b", "live test")
	m.store.SetConversations([]*model.Conversation{conv})
	updated, _ := m.Update(StoreUpdatedMsg{State: m.store.Snapshot()})
	m = updated.(Model)
	m.activeConvID = "conv-1"

	updated, _ = m.Update(ActivityMsg{Activity: turn.Activity{
		ConversationID: "conv-1",
		State:          turn.StateThinking,
		Thinking:       "pondering deeply",
	}})
	m = updated.(Model)

	content := m.conversationView()
	if !strings.Contains(content, "pondering deeply") {
		t.Errorf("live thinking text missing:\n%s", content)
	}

	// indicator is keyed by conversation id: another conversation's view
	// must not show it
	m.activeConvID = ""
	if got := m.conversationView(); strings.Contains(got, "pondering deeply") {
		t.Error("live thinking leaked into another view")
	}
}
