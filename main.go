// tinychat TUI - a terminal client for streaming LLM chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tinychat-tui/internal/api"
	"github.com/jeranaias/tinychat-tui/internal/config"
	"github.com/jeranaias/tinychat-tui/internal/logging"
	"github.com/jeranaias/tinychat-tui/internal/store"
	"github.com/jeranaias/tinychat-tui/internal/transport"
	"github.com/jeranaias/tinychat-tui/internal/turn"
	"github.com/jeranaias/tinychat-tui/internal/ui/chat"
	"github.com/jeranaias/tinychat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("tinychat %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tinychat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The TUI owns the terminal; logs go to a file.
	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.Setup(logPath, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info().Str("version", Version).Msg("tinychat starting")

	st := store.New()

	restClient := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.RequestTimeout(),
	})

	manager := transport.NewManager(transport.Config{
		URL:                  cfg.Server.WebSocketURL,
		BackoffBase:          cfg.BackoffBase(),
		BackoffGrowth:        cfg.Reconnect.BackoffGrowth,
		MaxReconnectAttempts: cfg.Reconnect.MaxAttempts,
	}, logger)

	coordinator := turn.NewCoordinator(manager, st, logger)

	events := chat.NewEvents()
	wireEvents(events, st, coordinator, manager)

	theme := styles.NewTheme()
	app := chat.New(cfg, theme, st, coordinator, restClient, manager, events)

	// Hot-reload config edits for the next session; log-level changes
	// apply immediately.
	if cfgPath, pathErr := config.ConfigPath(); pathErr == nil {
		if watcher, watchErr := config.Watch(cfgPath, logger, func(next *config.Config) {
			logger.Info().Str("log_level", next.Log.Level).Msg("applying reloaded config")
			*cfg = *next
		}); watchErr == nil {
			defer watcher.Close()
		} else {
			logger.Warn().Err(watchErr).Msg("config hot reload unavailable")
		}
	}

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		logger.Error().Err(err).Msg("program terminated")
		return err
	}

	manager.Disconnect()
	logger.Info().Msg("tinychat exiting")
	return nil
}

// wireEvents connects background goroutines to the update loop. All
// callbacks only push into the events channel, so they never block the
// transport read pump.
func wireEvents(events *chat.Events, st *store.Store, coordinator *turn.Coordinator, manager *transport.Manager) {
	st.Subscribe(func(state store.State) {
		events.Push(chat.StoreUpdatedMsg{State: state})
	})

	coordinator.SetCallbacks(turn.Callbacks{
		OnActivity: func(a turn.Activity) {
			events.Push(chat.ActivityMsg{Activity: a})
		},
		OnConversationStarted: func(id string) {
			events.Push(chat.ConversationStartedMsg{ID: id})
		},
		OnConversationResumed: func(id string) {
			events.Push(chat.ConversationResumedMsg{ID: id})
		},
		OnTurnDone: func(id string) {
			events.Push(chat.TurnDoneMsg{ID: id})
		},
		OnTurnError: func(err *turn.Error) {
			events.Push(chat.TurnFailedMsg{Err: err})
		},
	})

	manager.SetFrameHandler(coordinator.HandleFrame)
	manager.SetLifecycleHandler(func(ev transport.LifecycleEvent) {
		coordinator.HandleLifecycle(ev)
		events.Push(chat.ConnectionMsg{Event: ev})
	})
}
