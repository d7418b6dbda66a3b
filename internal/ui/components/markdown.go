// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders assistant message bodies as terminal markdown.
// Rendering falls back to the raw text on any error, so a malformed
// message can never blank the viewport.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdownRenderer creates a renderer for the given wrap width.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	m := &MarkdownRenderer{}
	m.SetWidth(width)
	return m
}

// SetWidth rebuilds the renderer for a new wrap width.
func (m *MarkdownRenderer) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	if m.renderer != nil && m.width == width {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// keep the previous renderer; Render falls back to raw text
		return
	}
	m.renderer = r
	m.width = width
}

// Render renders markdown source, falling back to the input on error.
func (m *MarkdownRenderer) Render(source string) string {
	if m.renderer == nil {
		return source
	}
	out, err := m.renderer.Render(source)
	if err != nil {
		return source
	}
	return strings.TrimRight(out, "\n")
}
