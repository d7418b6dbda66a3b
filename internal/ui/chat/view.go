// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tinychat-tui/internal/model"
	"github.com/jeranaias/tinychat-tui/internal/turn"
	"github.com/jeranaias/tinychat-tui/internal/util"
)

// View renders the full application frame.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.overlayView(),
		m.viewport.View(),
		m.theme.InputContainer.Render(m.input.View()),
		m.statusbar.View(m.connector.State(), m.selectedModel.DisplayLabel()),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.sidebar.View(m.focus == focusSidebar),
		main,
	)
}

// overlayView renders the toast or model picker band above the viewport.
// Empty when nothing is active, so the row collapses.
func (m Model) overlayView() string {
	if m.pickerOpen {
		return m.pickerView()
	}
	if m.toast.Visible() {
		return m.toast.View(m.viewport.Width)
	}
	return ""
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString("select model\n")
	for i, info := range m.models {
		marker := "  "
		style := m.theme.PickerItem
		if i == m.pickerCursor {
			marker = "> "
			style = m.theme.PickerActive
		}
		label := info.DisplayLabel()
		if info.Model == m.selectedModel.Model {
			label += " (current)"
		}
		b.WriteString(style.Render(marker + label))
		b.WriteString("\n")
	}
	return m.theme.PickerBox.Render(strings.TrimRight(b.String(), "\n"))
}

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

// refreshViewport rebuilds the viewport content for the active
// conversation and pins the view to the bottom while content streams.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.conversationView())
	if atBottom || m.turnActiveHere() {
		m.viewport.GotoBottom()
	}
}

func (m *Model) turnActiveHere() bool {
	return m.hasActivity && m.activity.ConversationID == m.activeConvID
}

func (m *Model) conversationView() string {
	conv := m.ActiveConversation()
	if conv == nil {
		return m.welcomeView()
	}

	var b strings.Builder
	for _, msg := range conv.Messages {
		b.WriteString(m.messageView(msg))
		b.WriteString("\n\n")
	}

	// live turn indicator before any draft message exists
	if m.turnActiveHere() && conv.Draft() == nil {
		b.WriteString(m.liveTurnView())
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) messageView(msg *model.Message) string {
	var b strings.Builder

	switch msg.Role {
	case model.RoleUser:
		b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.MessageBody.Render(msg.Content))
		return b.String()

	case model.RoleAssistant:
		b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")

		if msg.HasThinking() {
			header := "Thought"
			if msg.ThinkingTime != nil {
				header = "Thought for " + util.FormatSeconds(*msg.ThinkingTime)
			}
			b.WriteString(m.theme.ThinkingHeader.Render(header))
			b.WriteString("\n")
			if m.cfg.UI.ShowThinking {
				b.WriteString(m.theme.ThinkingBody.Render(*msg.Thinking))
				b.WriteString("\n")
			}
		}

		content := msg.Content
		if m.cfg.UI.Markdown && !msg.Draft {
			content = m.markdown.Render(content)
		}
		b.WriteString(content)

		if msg.Draft {
			b.WriteString(m.theme.StreamCursor.Render("▌"))
		}
		return b.String()
	}

	return msg.Content
}

// liveTurnView shows progress between intent dispatch and the first
// response chunk: a spinner while pending, the thinking stream while the
// model reasons.
func (m *Model) liveTurnView() string {
	var b strings.Builder
	b.WriteString(m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName()))
	b.WriteString("\n")

	switch m.activity.State {
	case turn.StateThinking:
		b.WriteString(m.theme.ThinkingHeader.Render(m.spinner.View() + " thinking"))
		if m.activity.Thinking != "" {
			b.WriteString("\n")
			b.WriteString(m.theme.ThinkingBody.Render(m.activity.Thinking))
		}
	default:
		b.WriteString(m.theme.ThinkingHeader.Render(m.spinner.View() + " waiting for reply"))
	}
	return b.String()
}

func (m *Model) welcomeView() string {
	lines := []string{
		"",
		m.theme.AssistantLabel.Render("tinychat"),
		"",
		m.theme.MessageBody.Render("Start a new conversation by typing below."),
		m.theme.ThinkingHeader.Render("tab switches to the conversation list; ctrl+p picks a model."),
	}
	return strings.Join(lines, "\n")
}
