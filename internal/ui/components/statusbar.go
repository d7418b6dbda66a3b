// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/tinychat-tui/internal/transport"
	"github.com/jeranaias/tinychat-tui/internal/ui/styles"
	"github.com/jeranaias/tinychat-tui/internal/util"
)

// StatusBar renders the single-line footer: connection state, selected
// model, and key hints.
type StatusBar struct {
	theme *styles.Theme
	width int
}

// NewStatusBar creates a status bar bound to a theme.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// SetSize sets the bar width.
func (s *StatusBar) SetSize(width int) {
	s.width = width
}

// View renders the bar for the given connection state and model label.
func (s *StatusBar) View(conn transport.State, modelLabel string) string {
	var connPart string
	switch conn {
	case transport.StateConnected:
		connPart = s.theme.StatusConn.Render("● " + conn.String())
	case transport.StateConnecting, transport.StateReconnecting:
		connPart = s.theme.StatusBar.Render("◌ " + conn.String())
	default:
		connPart = s.theme.StatusDisconn.Render("○ " + conn.String())
	}

	if modelLabel == "" {
		modelLabel = "no model"
	}
	modelPart := s.theme.StatusModel.Render(modelLabel)

	hints := strings.Join([]string{
		s.theme.ShortcutKey.Render("^N") + s.theme.ShortcutDesc.Render(" new"),
		s.theme.ShortcutKey.Render("^P") + s.theme.ShortcutDesc.Render(" model"),
		s.theme.ShortcutKey.Render("^D") + s.theme.ShortcutDesc.Render(" delete"),
		s.theme.ShortcutKey.Render("tab") + s.theme.ShortcutDesc.Render(" focus"),
		s.theme.ShortcutKey.Render("^C") + s.theme.ShortcutDesc.Render(" quit"),
	}, "  ")

	left := connPart + "  " + modelPart
	gap := s.width - util.StringWidth(stripStyles(left)) - util.StringWidth(stripStyles(hints))
	if gap < 1 {
		return s.theme.StatusBar.Render(left)
	}
	return left + strings.Repeat(" ", gap) + hints
}

// stripStyles approximates the printable width of styled text by measuring
// it without ANSI sequences.
func stripStyles(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
