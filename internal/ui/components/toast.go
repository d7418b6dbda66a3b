// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/jeranaias/tinychat-tui/internal/ui/styles"
	"github.com/jeranaias/tinychat-tui/internal/util"
)

// ToastDuration is how long an error toast stays visible.
const ToastDuration = 5 * time.Second

// Toast is a transient error banner.
type Toast struct {
	theme   *styles.Theme
	message string
	until   time.Time
}

// NewToast creates a toast bound to a theme.
func NewToast(theme *styles.Theme) *Toast {
	return &Toast{theme: theme}
}

// Show displays a message for ToastDuration.
func (t *Toast) Show(message string) {
	t.message = message
	t.until = time.Now().Add(ToastDuration)
}

// Dismiss hides the toast immediately.
func (t *Toast) Dismiss() {
	t.message = ""
}

// Visible reports whether the toast should render.
func (t *Toast) Visible() bool {
	return t.message != "" && time.Now().Before(t.until)
}

// View renders the toast constrained to maxWidth columns.
func (t *Toast) View(maxWidth int) string {
	if !t.Visible() {
		return ""
	}
	return t.theme.Toast.Render(util.TruncateWidth(t.message, maxWidth-4))
}
