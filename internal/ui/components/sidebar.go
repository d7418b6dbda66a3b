// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable view components for the TUI.
package components

import (
	"strings"

	"github.com/jeranaias/tinychat-tui/internal/model"
	"github.com/jeranaias/tinychat-tui/internal/ui/styles"
	"github.com/jeranaias/tinychat-tui/internal/util"
)

// Sidebar renders the conversation list, most recently updated first.
type Sidebar struct {
	theme  *styles.Theme
	width  int
	height int

	conversations []*model.Conversation
	cursor        int
	activeID      string
	busyID        string
}

// NewSidebar creates a sidebar bound to a theme.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme}
}

// SetSize sets the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetConversations replaces the listed conversations, preserving the cursor
// on the same conversation when it survives the update.
func (s *Sidebar) SetConversations(convs []*model.Conversation) {
	var keepID string
	if s.cursor >= 0 && s.cursor < len(s.conversations) {
		keepID = s.conversations[s.cursor].ID
	}
	s.conversations = convs
	s.cursor = 0
	for i, c := range convs {
		if c.ID == keepID {
			s.cursor = i
			break
		}
	}
}

// SetActive marks the conversation whose messages are on screen.
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
	for i, c := range s.conversations {
		if c.ID == id {
			s.cursor = i
			return
		}
	}
}

// SetBusy marks the conversation with a turn in flight; empty clears it.
func (s *Sidebar) SetBusy(id string) {
	s.busyID = id
}

// MoveCursor moves the selection by delta, clamped to the list.
func (s *Sidebar) MoveCursor(delta int) {
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor >= len(s.conversations) {
		s.cursor = len(s.conversations) - 1
	}
}

// Selected returns the conversation under the cursor, or nil.
func (s *Sidebar) Selected() *model.Conversation {
	if s.cursor < 0 || s.cursor >= len(s.conversations) {
		return nil
	}
	return s.conversations[s.cursor]
}

// View renders the sidebar.
func (s *Sidebar) View(focused bool) string {
	var b strings.Builder
	b.WriteString(s.theme.SidebarTitle.Render("tinychat"))
	b.WriteString("\n")

	if len(s.conversations) == 0 {
		b.WriteString(s.theme.SidebarTimestamp.Render("no conversations"))
		return s.theme.Sidebar.Width(s.width).Height(s.height).Render(b.String())
	}

	// leave a line for the title
	visible := s.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if s.cursor >= visible {
		start = s.cursor - visible + 1
	}

	for i := start; i < len(s.conversations) && i < start+visible; i++ {
		conv := s.conversations[i]
		marker := "  "
		if i == s.cursor && focused {
			marker = "> "
		} else if conv.ID == s.activeID {
			marker = "* "
		}
		label := conv.GetTitle()
		if conv.ID == s.busyID {
			label = "… " + label
		}
		age := util.FormatRelativeTime(conv.UpdatedAt)

		// title left, age right
		room := s.width - util.StringWidth(marker) - util.StringWidth(age) - 2
		if room < 4 {
			room = 4
		}
		line := marker + util.PadRight(util.TruncateWidth(label, room), room) + " " + age

		style := s.theme.SidebarItem
		if i == s.cursor && focused {
			style = s.theme.SidebarSelected
		} else if conv.ID == s.activeID {
			style = s.theme.SidebarSelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return s.theme.Sidebar.Width(s.width).Height(s.height).Render(strings.TrimRight(b.String(), "\n"))
}
