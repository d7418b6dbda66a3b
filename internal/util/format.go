// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strconv"
	"time"
)

// FormatSeconds formats a duration in seconds for display, e.g. "3.2s".
// Sub-tenth durations render as "<0.1s".
func FormatSeconds(secs float64) string {
	if secs < 0 {
		secs = 0
	}
	if secs > 0 && secs < 0.1 {
		return "<0.1s"
	}
	return strconv.FormatFloat(secs, 'f', 1, 64) + "s"
}

// FormatRelativeTime renders a timestamp as a coarse relative age for the
// sidebar: "now", "5m", "3h", "2d", or the date for anything older.
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "now"
	case age < time.Hour:
		return strconv.Itoa(int(age.Minutes())) + "m"
	case age < 24*time.Hour:
		return strconv.Itoa(int(age.Hours())) + "h"
	case age < 7*24*time.Hour:
		return strconv.Itoa(int(age.Hours()/24)) + "d"
	default:
		return t.Format("Jan 2")
	}
}
