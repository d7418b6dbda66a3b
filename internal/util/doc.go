// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the tinychat application.
//
// This package contains common helper functions used throughout the
// application for string manipulation, display formatting, and file
// operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth / StringWidth: terminal-column aware sizing via
//     go-runewidth
//   - SafeSubstring: rune-index substring extraction
//
// Display Formatting:
//   - FormatSeconds: thinking durations ("3.2s")
//   - FormatRelativeTime: sidebar ages ("5m", "3h")
//
// File Operations:
//   - AtomicWriteFile: crash-safe write via temp file and rename
package util
