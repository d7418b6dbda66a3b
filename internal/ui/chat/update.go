// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tinychat-tui/internal/transport"
	"github.com/jeranaias/tinychat-tui/internal/turn"
)

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	// ---- pushed from store/coordinator/transport goroutines ----

	case StoreUpdatedMsg:
		m.state = msg.State
		m.sidebar.SetConversations(m.state.Conversations)
		m.refreshViewport()
		return m, m.events.Wait()

	case ActivityMsg:
		m.activity = msg.Activity
		m.hasActivity = msg.Activity.State != turn.StateIdle
		if !m.hasActivity {
			m.sidebar.SetBusy("")
		} else {
			m.sidebar.SetBusy(m.activity.ConversationID)
		}
		m.refreshViewport()
		return m, m.events.Wait()

	case ConversationStartedMsg:
		m.activeConvID = msg.ID
		m.sidebar.SetActive(msg.ID)
		m.refreshViewport()
		return m, m.events.Wait()

	case ConversationResumedMsg:
		return m, m.events.Wait()

	case TurnDoneMsg:
		m.refreshViewport()
		return m, m.events.Wait()

	case TurnFailedMsg:
		if msg.Err != nil {
			m.toast.Show(msg.Err.Error())
		}
		m.refreshViewport()
		return m, m.events.Wait()

	case ConnectionMsg:
		if msg.Event.Kind == transport.LifecycleDisconnected && msg.Event.Terminal {
			m.toast.Show("connection lost; press ctrl+r to reconnect")
		}
		return m, m.events.Wait()

	// ---- command results ----

	case connectResultMsg:
		if msg.err != nil {
			m.toast.Show("cannot reach server: " + msg.err.Error())
		}
		return m, nil

	case seedLoadedMsg:
		if msg.err != nil {
			m.toast.Show("failed to load from server: " + msg.err.Error())
		}
		if msg.conversations != nil {
			m.store.SetConversations(msg.conversations)
		}
		if msg.models != nil {
			m.store.SetModels(msg.models)
			m.models = msg.models
			m.selectDefaultModel()
		}
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.toast.Show("failed to open conversation: " + msg.err.Error())
		}
		if msg.conversation != nil {
			m.store.SetMessages(msg.conversation.ID, msg.conversation.Messages)
			m.activeConvID = msg.conversation.ID
			m.sidebar.SetActive(msg.conversation.ID)
			m.focus = focusInput
			m.input.Focus()
			m.refreshViewport()
		}
		return m, nil

	case conversationDeletedMsg:
		if msg.err != nil {
			m.toast.Show("failed to delete conversation: " + msg.err.Error())
			return m, nil
		}
		m.store.RemoveConversation(msg.id)
		if m.activeConvID == msg.id {
			m.activeConvID = ""
			m.refreshViewport()
		}
		return m, nil

	case intentResultMsg:
		if msg.err != nil {
			m.toast.Show(msg.err.Error())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.hasActivity {
			m.refreshViewport()
		}
		return m, cmd
	}

	return m.updateComponents(msg)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// global bindings
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.pickerOpen {
			m.pickerOpen = false
			return m, nil
		}
		if m.toast.Visible() {
			m.toast.Dismiss()
			return m, nil
		}
	case "ctrl+r":
		return m, connectCmd(m.connector)
	case "ctrl+n":
		m.activeConvID = ""
		m.sidebar.SetActive("")
		m.focus = focusInput
		m.input.Focus()
		m.refreshViewport()
		return m, nil
	case "ctrl+p":
		if len(m.models) > 0 {
			m.pickerOpen = !m.pickerOpen
			m.pickerCursor = 0
			for i, info := range m.models {
				if info.Model == m.selectedModel.Model {
					m.pickerCursor = i
				}
			}
		}
		return m, nil
	case "tab":
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil
	}

	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}
	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case "down", "j":
		if m.pickerCursor < len(m.models)-1 {
			m.pickerCursor++
		}
	case "enter":
		m.selectedModel = m.models[m.pickerCursor]
		m.pickerOpen = false
	}
	return m, nil
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.sidebar.MoveCursor(-1)
	case "down", "j":
		m.sidebar.MoveCursor(1)
	case "enter":
		if conv := m.sidebar.Selected(); conv != nil && conv.ID != m.activeConvID {
			return m, openConversationCmd(m.seeder, m.conductor, conv.ID)
		}
	case "ctrl+d":
		if conv := m.sidebar.Selected(); conv != nil {
			return m, deleteConversationCmd(m.seeder, conv.ID)
		}
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submit()
	case "alt+enter":
		// literal newline in the composer
		m.input.InsertString("\n")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit dispatches the composed message as a start or follow-up intent.
func (m Model) submit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}
	if m.selectedModel.Model == "" {
		m.toast.Show("no model selected; press ctrl+p")
		return m, nil
	}

	m.input.Reset()
	if m.activeConvID == "" {
		return m, startConversationCmd(m.conductor, m.selectedModel.Model, content)
	}
	return m, sendMessageCmd(m.conductor, m.activeConvID, content, m.selectedModel.Model)
}

// =============================================================================
// LAYOUT AND PASSTHROUGH
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	mainWidth := msg.Width - sidebarWidth
	if mainWidth < 20 {
		mainWidth = 20
	}
	// viewport height: total minus input box (5) and status bar (1)
	vpHeight := msg.Height - 6
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.sidebar.SetSize(sidebarWidth, msg.Height)
	m.statusbar.SetSize(msg.Width)
	m.markdown.SetWidth(mainWidth - 4)
	m.input.SetWidth(mainWidth - 4)

	if !m.ready {
		m.viewport = viewport.New(mainWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = mainWidth
		m.viewport.Height = vpHeight
	}
	m.refreshViewport()
	return m
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}
