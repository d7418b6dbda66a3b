// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the WebSocket connection to the chat server.
package transport

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// =============================================================================
// CONNECTION STATE
// =============================================================================

// State is the lifecycle state of the managed connection. Modeling the
// connection as an owned resource with an explicit state (instead of a
// nullable handle checked ad hoc) is what lets the turn coordinator enforce
// its single-turn invariant.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// =============================================================================
// LIFECYCLE EVENTS
// =============================================================================

// LifecycleKind identifies a lifecycle notification.
type LifecycleKind int

const (
	// LifecycleConnected fires when a connection is established.
	LifecycleConnected LifecycleKind = iota

	// LifecycleDisconnected fires when the connection closes. Terminal is
	// set when no further reconnect attempt will be scheduled.
	LifecycleDisconnected

	// LifecycleError fires on a failed connection or reconnect attempt.
	LifecycleError
)

// LifecycleEvent is a connection lifecycle notification.
type LifecycleEvent struct {
	Kind     LifecycleKind
	Err      error
	Terminal bool
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds configuration options for the transport manager.
type Config struct {
	// URL is the WebSocket endpoint, e.g. "ws://127.0.0.1:8080/ws".
	// Reconnection reuses the same URL.
	URL string

	// DialTimeout bounds the WebSocket handshake (default: 10s)
	DialTimeout time.Duration

	// BackoffBase is the delay before the first reconnect attempt (default: 1s)
	BackoffBase time.Duration

	// BackoffGrowth is the exponential growth factor (default: 1.5)
	BackoffGrowth float64

	// MaxReconnectAttempts caps consecutive reconnect attempts (default: 5).
	// After that many failures the manager goes terminally disconnected
	// until an explicit Connect call.
	MaxReconnectAttempts int
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() Config {
	return Config{
		URL:                  "ws://127.0.0.1:8080/ws",
		DialTimeout:          10 * time.Second,
		BackoffBase:          1 * time.Second,
		BackoffGrowth:        1.5,
		MaxReconnectAttempts: 5,
	}
}

// BackoffDelay returns the delay before reconnect attempt k (1-based):
// base * growth^(k-1).
func BackoffDelay(base time.Duration, growth float64, attempt int) time.Duration {
	if attempt <= 1 {
		return base
	}
	return time.Duration(float64(base) * math.Pow(growth, float64(attempt-1)))
}

// =============================================================================
// MANAGER
// =============================================================================

// FrameHandler receives inbound raw frames, serially and in arrival order.
type FrameHandler func(data []byte)

// LifecycleHandler receives connection lifecycle notifications.
type LifecycleHandler func(ev LifecycleEvent)

// connectAttempt is a single in-flight dial shared by concurrent Connect
// callers.
type connectAttempt struct {
	done chan struct{}
	err  error
}

// Manager maintains a single logical WebSocket connection: dialing,
// reconnecting with exponential backoff after unexpected closures, and raw
// send/receive plumbing. It has no knowledge of the chat protocol.
type Manager struct {
	cfg    Config
	logger zerolog.Logger

	mu             sync.Mutex
	state          State
	conn           *websocket.Conn
	attempt        *connectAttempt
	reconnectTimer *time.Timer
	failures       int
	closing        bool

	// writeMu serializes frame writes; gorilla connections allow only one
	// concurrent writer.
	writeMu sync.Mutex

	onFrame     FrameHandler
	onLifecycle LifecycleHandler
}

// NewManager creates a transport manager. Handlers are registered before
// the first Connect call.
func NewManager(cfg Config, logger zerolog.Logger) *Manager {
	if cfg.URL == "" {
		cfg.URL = DefaultConfig().URL
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = 1 * time.Second
	}
	if cfg.BackoffGrowth == 0 {
		cfg.BackoffGrowth = 1.5
	}
	if cfg.MaxReconnectAttempts == 0 {
		cfg.MaxReconnectAttempts = 5
	}

	return &Manager{
		cfg:    cfg,
		logger: logger.With().Str("component", "transport").Logger(),
		state:  StateDisconnected,
	}
}

// SetFrameHandler registers the inbound frame callback. Frames are
// delivered from a single reader goroutine, serially and in arrival order.
func (m *Manager) SetFrameHandler(fn FrameHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFrame = fn
}

// SetLifecycleHandler registers the lifecycle callback.
func (m *Manager) SetLifecycleHandler(fn LifecycleHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLifecycle = fn
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected returns true when a connection is established.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// =============================================================================
// CONNECT / DISCONNECT
// =============================================================================

// Connect establishes the connection. It is idempotent: when already
// connected it returns immediately, and concurrent callers share the same
// in-flight attempt. An explicit Connect resets the reconnect counter.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return nil
	}

	// An explicit connect supersedes any scheduled retry.
	m.failures = 0
	m.cancelReconnectLocked()

	if m.attempt != nil {
		attempt := m.attempt
		m.mu.Unlock()
		select {
		case <-attempt.done:
			return attempt.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	attempt := &connectAttempt{done: make(chan struct{})}
	m.attempt = attempt
	m.state = StateConnecting
	m.mu.Unlock()

	err := m.dial(ctx)

	m.mu.Lock()
	m.attempt = nil
	if err != nil && m.state == StateConnecting {
		m.state = StateDisconnected
	}
	m.mu.Unlock()

	attempt.err = err
	close(attempt.done)

	if err != nil {
		m.emit(LifecycleEvent{Kind: LifecycleError, Err: err})
		return err
	}
	m.emit(LifecycleEvent{Kind: LifecycleConnected})
	return nil
}

// dial performs the WebSocket handshake and starts the read pump.
func (m *Manager) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: m.cfg.DialTimeout}

	m.logger.Debug().Str("url", m.cfg.URL).Msg("dialing server")
	conn, _, err := dialer.DialContext(ctx, m.cfg.URL, nil)
	if err != nil {
		m.logger.Warn().Err(err).Msg("dial failed")
		return &Error{Kind: KindDial, Message: "failed to connect to " + m.cfg.URL, Cause: err}
	}

	m.mu.Lock()
	m.conn = conn
	m.state = StateConnected
	m.failures = 0
	m.closing = false
	m.mu.Unlock()

	go m.readPump(conn)

	m.logger.Info().Str("url", m.cfg.URL).Msg("connected")
	return nil
}

// Disconnect closes the connection and cancels any scheduled reconnect.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.cancelReconnectLocked()
	m.failures = 0
	m.closing = true
	conn := m.conn
	m.conn = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if conn != nil {
		// Best effort close handshake; the read pump observes the closure.
		m.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		m.writeMu.Unlock()
		_ = conn.Close()
		m.logger.Info().Msg("disconnected")
	}
}

// =============================================================================
// SEND
// =============================================================================

// Send writes a raw frame. When disconnected it attempts to reconnect once
// before sending; if that fails, the frame is not sent.
func (m *Manager) Send(ctx context.Context, data []byte) error {
	m.mu.Lock()
	conn := m.conn
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected {
		if err := m.Connect(ctx); err != nil {
			return &Error{Kind: KindNotConnected, Message: "not connected", Cause: err}
		}
		m.mu.Lock()
		conn = m.conn
		m.mu.Unlock()
		if conn == nil {
			return &Error{Kind: KindNotConnected, Message: "not connected"}
		}
	}

	m.writeMu.Lock()
	err := conn.WriteMessage(websocket.TextMessage, data)
	m.writeMu.Unlock()
	if err != nil {
		m.logger.Warn().Err(err).Msg("send failed")
		return &Error{Kind: KindSend, Message: "failed to send frame", Cause: err}
	}
	return nil
}

// =============================================================================
// READ PUMP
// =============================================================================

// readPump reads frames from one physical connection until it closes.
// Because there is a single pump per connection, frame delivery is serial
// and in arrival order.
func (m *Manager) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleClosure(conn, err)
			return
		}

		m.mu.Lock()
		handler := m.onFrame
		m.mu.Unlock()
		if handler != nil {
			handler(data)
		}
	}
}

// handleClosure reacts to a connection loss observed by the read pump.
func (m *Manager) handleClosure(conn *websocket.Conn, err error) {
	m.mu.Lock()
	if m.conn != conn && !m.closing {
		// A stale pump from a superseded connection.
		m.mu.Unlock()
		return
	}
	expected := m.closing
	m.conn = nil
	if !expected {
		m.state = StateReconnecting
	}
	m.mu.Unlock()

	if expected {
		m.emit(LifecycleEvent{Kind: LifecycleDisconnected})
		return
	}

	m.logger.Warn().Err(err).Msg("connection lost")
	m.emit(LifecycleEvent{Kind: LifecycleDisconnected, Err: err})

	m.mu.Lock()
	m.scheduleReconnectLocked()
	m.mu.Unlock()
}

// =============================================================================
// RECONNECTION
// =============================================================================

// scheduleReconnectLocked arms the backoff timer for the next reconnect
// attempt. Caller must hold mu.
func (m *Manager) scheduleReconnectLocked() {
	attempt := m.failures + 1
	if attempt > m.cfg.MaxReconnectAttempts {
		m.state = StateDisconnected
		m.logger.Error().
			Int("attempts", m.cfg.MaxReconnectAttempts).
			Msg("reconnect attempts exhausted")
		go m.emit(LifecycleEvent{Kind: LifecycleDisconnected, Terminal: true})
		return
	}

	delay := BackoffDelay(m.cfg.BackoffBase, m.cfg.BackoffGrowth, attempt)
	m.logger.Info().
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("scheduling reconnect")

	m.state = StateReconnecting
	m.reconnectTimer = time.AfterFunc(delay, func() { m.reconnect(attempt) })
}

// reconnect runs one scheduled attempt.
func (m *Manager) reconnect(attempt int) {
	m.mu.Lock()
	if m.state != StateReconnecting {
		// Superseded by an explicit Connect or Disconnect.
		m.mu.Unlock()
		return
	}
	m.reconnectTimer = nil
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.DialTimeout)
	err := m.dial(ctx)
	cancel()

	if err == nil {
		m.emit(LifecycleEvent{Kind: LifecycleConnected})
		return
	}

	m.emit(LifecycleEvent{Kind: LifecycleError, Err: err})

	m.mu.Lock()
	if m.state == StateReconnecting {
		m.failures = attempt
		m.scheduleReconnectLocked()
	}
	m.mu.Unlock()
}

// cancelReconnectLocked stops any armed backoff timer. Caller must hold mu.
func (m *Manager) cancelReconnectLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}

// emit delivers a lifecycle event to the registered handler.
func (m *Manager) emit(ev LifecycleEvent) {
	m.mu.Lock()
	handler := m.onLifecycle
	m.mu.Unlock()
	if handler != nil {
		handler(ev)
	}
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes transport errors for handling.
type ErrorKind int

const (
	KindDial ErrorKind = iota
	KindSend
	KindNotConnected
)

// Error represents a transport failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
