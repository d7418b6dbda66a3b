// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.WebSocketURL != "ws://127.0.0.1:8080/ws" {
		t.Errorf("ws_url = %q", cfg.Server.WebSocketURL)
	}
	if cfg.Reconnect.MaxAttempts != 5 || cfg.Reconnect.BackoffGrowth != 1.5 {
		t.Errorf("reconnect defaults = %+v", cfg.Reconnect)
	}
	if cfg.BackoffBase() != time.Second {
		t.Errorf("BackoffBase() = %v", cfg.BackoffBase())
	}
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
default_model = "qwen3:4b"

[server]
base_url = "http://10.0.0.5:9090"
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.DefaultModel != "qwen3:4b" {
		t.Errorf("default_model = %q", cfg.DefaultModel)
	}
	if cfg.Server.BaseURL != "http://10.0.0.5:9090" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	// unspecified sections fall back to defaults
	if cfg.Server.WebSocketURL != "ws://127.0.0.1:8080/ws" {
		t.Errorf("ws_url = %q", cfg.Server.WebSocketURL)
	}
	if cfg.Reconnect.BackoffBaseMs != 1000 {
		t.Errorf("backoff_base_ms = %d", cfg.Reconnect.BackoffBaseMs)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadFromPath_InvalidTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "not valid [ toml")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad base url", func(c *Config) { c.Server.BaseURL = "ftp://x" }, "server.base_url"},
		{"bad ws url", func(c *Config) { c.Server.WebSocketURL = "http://x" }, "server.ws_url"},
		{"zero timeout", func(c *Config) { c.Server.RequestTimeoutSecs = -1 }, "server.request_timeout_secs"},
		{"shrinking backoff", func(c *Config) { c.Reconnect.BackoffGrowth = 0.5 }, "reconnect.backoff_growth"},
		{"zero attempts", func(c *Config) { c.Reconnect.MaxAttempts = -2 }, "reconnect.max_attempts"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			errs, ok := err.(ValidateErrors)
			if !ok {
				t.Fatalf("err type = %T", err)
			}
			found := false
			for _, e := range errs {
				if e.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tc.field, errs)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TINYCHAT_MODEL", "llama3:8b")
	t.Setenv("TINYCHAT_WS_URL", "wss://chat.example.com/ws")
	t.Setenv("TINYCHAT_LOG_LEVEL", "DEBUG")
	t.Setenv("TINYCHAT_RECONNECT_MAX", "9")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.DefaultModel != "llama3:8b" {
		t.Errorf("default_model = %q", cfg.DefaultModel)
	}
	if cfg.Server.WebSocketURL != "wss://chat.example.com/ws" {
		t.Errorf("ws_url = %q", cfg.Server.WebSocketURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Reconnect.MaxAttempts != 9 {
		t.Errorf("max_attempts = %d", cfg.Reconnect.MaxAttempts)
	}
}

func TestApplyEnvOverrides_IgnoresGarbageRetryCount(t *testing.T) {
	t.Setenv("TINYCHAT_RECONNECT_MAX", "many")
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Reconnect.MaxAttempts != 5 {
		t.Errorf("max_attempts = %d, want default 5", cfg.Reconnect.MaxAttempts)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.DefaultModel = "llama3:8b"
	cfg.Reconnect.MaxAttempts = 7
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.DefaultModel != "llama3:8b" || loaded.Reconnect.MaxAttempts != 7 {
		t.Errorf("round trip = %+v", loaded)
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `default_model = "first"`)

	loaded := make(chan *Config, 4)
	w, err := Watch(path, zerolog.Nop(), func(cfg *Config) { loaded <- cfg })
	require.NoError(t, err)
	defer w.Close()

	writeConfig(t, dir, `default_model = "second"`)

	require.Eventually(t, func() bool {
		select {
		case cfg := <-loaded:
			return cfg.DefaultModel == "second"
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond, "reload never delivered")
}

func TestWatcher_KeepsOldConfigOnInvalidEdit(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `default_model = "first"`)

	loaded := make(chan *Config, 4)
	w, err := Watch(path, zerolog.Nop(), func(cfg *Config) { loaded <- cfg })
	require.NoError(t, err)
	defer w.Close()

	writeConfig(t, dir, "broken [ toml")

	// the invalid write must not produce a callback
	select {
	case cfg := <-loaded:
		t.Fatalf("callback fired for invalid config: %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}
}
