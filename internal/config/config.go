// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// tinychat.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.tinychat/config.toml.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/tinychat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tinychat configuration.
type Config struct {
	// DefaultModel is the model preselected at startup. Empty means the
	// first model the server reports.
	DefaultModel string `toml:"default_model"`

	// Server configuration
	Server ServerConfig `toml:"server"`

	// Reconnect configuration
	Reconnect ReconnectConfig `toml:"reconnect"`

	// Log configuration
	Log LogConfig `toml:"log"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains chat server endpoints.
type ServerConfig struct {
	// BaseURL is the REST base URL (default: http://127.0.0.1:8080)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6 resolution issues on Windows
	BaseURL string `toml:"base_url"`
	// WebSocketURL is the streaming endpoint (default: ws://127.0.0.1:8080/ws)
	WebSocketURL string `toml:"ws_url"`
	// RequestTimeoutSecs bounds REST requests (default: 30)
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

// ReconnectConfig contains WebSocket reconnection tuning.
type ReconnectConfig struct {
	// BackoffBaseMs is the delay before the first reconnect attempt in
	// milliseconds (default: 1000)
	BackoffBaseMs int `toml:"backoff_base_ms"`
	// BackoffGrowth is the exponential growth factor (default: 1.5)
	BackoffGrowth float64 `toml:"backoff_growth"`
	// MaxAttempts caps consecutive reconnect attempts (default: 5)
	MaxAttempts int `toml:"max_attempts"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is the zerolog level name: trace, debug, info, warn, error (default: info)
	Level string `toml:"level"`
	// File is the log file path (empty = default ~/.tinychat/tinychat.log)
	File string `toml:"file"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Markdown renders assistant messages through glamour when true (default: true)
	Markdown bool `toml:"markdown"`
	// ShowThinking expands thinking sections by default (default: false)
	ShowThinking bool `toml:"show_thinking"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:            "http://127.0.0.1:8080",
			WebSocketURL:       "ws://127.0.0.1:8080/ws",
			RequestTimeoutSecs: 30,
		},
		Reconnect: ReconnectConfig{
			BackoffBaseMs: 1000,
			BackoffGrowth: 1.5,
			MaxAttempts:   5,
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Markdown: true,
		},
	}
}

// fillDefaults replaces zero values with defaults after decoding, so a
// partial config file behaves like an override on top of Default().
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = def.Server.BaseURL
	}
	if cfg.Server.WebSocketURL == "" {
		cfg.Server.WebSocketURL = def.Server.WebSocketURL
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = def.Server.RequestTimeoutSecs
	}
	if cfg.Reconnect.BackoffBaseMs == 0 {
		cfg.Reconnect.BackoffBaseMs = def.Reconnect.BackoffBaseMs
	}
	if cfg.Reconnect.BackoffGrowth == 0 {
		cfg.Reconnect.BackoffGrowth = def.Reconnect.BackoffGrowth
	}
	if cfg.Reconnect.MaxAttempts == 0 {
		cfg.Reconnect.MaxAttempts = def.Reconnect.MaxAttempts
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the tinychat configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tinychat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the effective log file path for a config.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tinychat.log"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file, falling back to built-in
// defaults when the file is absent. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies TINYCHAT_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	// TINYCHAT_MODEL
	if model := os.Getenv("TINYCHAT_MODEL"); model != "" {
		c.DefaultModel = model
	}

	// TINYCHAT_SERVER_URL
	if base := os.Getenv("TINYCHAT_SERVER_URL"); base != "" {
		c.Server.BaseURL = base
	}

	// TINYCHAT_WS_URL
	if ws := os.Getenv("TINYCHAT_WS_URL"); ws != "" {
		c.Server.WebSocketURL = ws
	}

	// TINYCHAT_LOG_LEVEL
	if level := os.Getenv("TINYCHAT_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}

	// TINYCHAT_RECONNECT_MAX
	if max := os.Getenv("TINYCHAT_RECONNECT_MAX"); max != "" {
		if n, err := strconv.Atoi(max); err == nil && n > 0 {
			c.Reconnect.MaxAttempts = n
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Server.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: "must be an http or https URL",
		})
	}
	if u, err := url.Parse(c.Server.WebSocketURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		errs = append(errs, ValidationError{
			Field:   "server.ws_url",
			Message: "must be a ws or wss URL",
		})
	}
	if c.Server.RequestTimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "server.request_timeout_secs",
			Message: "must be at least 1",
		})
	}
	if c.Reconnect.BackoffBaseMs < 1 {
		errs = append(errs, ValidationError{
			Field:   "reconnect.backoff_base_ms",
			Message: "must be at least 1",
		})
	}
	if c.Reconnect.BackoffGrowth < 1 {
		errs = append(errs, ValidationError{
			Field:   "reconnect.backoff_growth",
			Message: "must be at least 1",
		})
	}
	if c.Reconnect.MaxAttempts < 1 {
		errs = append(errs, ValidationError{
			Field:   "reconnect.max_attempts",
			Message: "must be at least 1",
		})
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: "must be one of trace, debug, info, warn, error",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// RequestTimeout returns the REST request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSecs) * time.Second
}

// BackoffBase returns the reconnect backoff base as a duration.
func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.Reconnect.BackoffBaseMs) * time.Millisecond
}
