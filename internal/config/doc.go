// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// tinychat.
//
// Configuration lives at ~/.tinychat/config.toml. Loading layers built-in
// defaults, the TOML file, and TINYCHAT_* environment overrides, then
// validates the result. A Watcher can reload the file on change.
//
// # Key Types
//
//   - Config: the complete configuration tree
//   - Watcher: fsnotify-based hot reload
//   - ValidationError / ValidateErrors: field-level validation failures
package config
