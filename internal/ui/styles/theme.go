// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the tinychat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar          lipgloss.Style
	SidebarTitle     lipgloss.Style
	SidebarItem      lipgloss.Style
	SidebarSelected  lipgloss.Style
	SidebarTimestamp lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageBody    lipgloss.Style
	ThinkingHeader lipgloss.Style
	ThinkingBody   lipgloss.Style
	StreamCursor   lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	StatusBar      lipgloss.Style
	StatusConn     lipgloss.Style
	StatusDisconn  lipgloss.Style
	StatusModel    lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES
	// ==========================================================================

	Toast        lipgloss.Style
	PickerBox    lipgloss.Style
	PickerItem   lipgloss.Style
	PickerActive lipgloss.Style
}

// NewTheme creates a theme adjusted to the terminal's capabilities.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	var (
		accent  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
		subtle  = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
		body    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#DDDDDD"}
		good    = lipgloss.AdaptiveColor{Light: "#12A150", Dark: "#2ECC71"}
		bad     = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#E74C3C"}
		overlay = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#2B2B2B"}
	)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(subtle).
		PaddingRight(1)
	t.SidebarTitle = lipgloss.NewStyle().Bold(true).Foreground(accent).PaddingBottom(1)
	t.SidebarItem = lipgloss.NewStyle().Foreground(body)
	t.SidebarSelected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	t.SidebarTimestamp = lipgloss.NewStyle().Foreground(subtle)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(good)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.MessageBody = lipgloss.NewStyle().Foreground(body)
	t.ThinkingHeader = lipgloss.NewStyle().Foreground(subtle).Italic(true)
	t.ThinkingBody = lipgloss.NewStyle().Foreground(subtle).Italic(true).PaddingLeft(2)
	t.StreamCursor = lipgloss.NewStyle().Foreground(accent).Blink(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(subtle).
		Padding(0, 1)
	t.StatusBar = lipgloss.NewStyle().Foreground(subtle)
	t.StatusConn = lipgloss.NewStyle().Foreground(good)
	t.StatusDisconn = lipgloss.NewStyle().Foreground(bad)
	t.StatusModel = lipgloss.NewStyle().Foreground(accent)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(accent)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(subtle)

	t.Toast = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(bad).
		Foreground(bad).
		Background(overlay).
		Padding(0, 1)
	t.PickerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Background(overlay).
		Padding(1, 2)
	t.PickerItem = lipgloss.NewStyle().Foreground(body)
	t.PickerActive = lipgloss.NewStyle().Foreground(accent).Bold(true)
}

// SetSize records the current terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
