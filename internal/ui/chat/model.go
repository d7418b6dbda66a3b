// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tinychat-tui/internal/config"
	"github.com/jeranaias/tinychat-tui/internal/model"
	"github.com/jeranaias/tinychat-tui/internal/store"
	"github.com/jeranaias/tinychat-tui/internal/transport"
	"github.com/jeranaias/tinychat-tui/internal/turn"
	"github.com/jeranaias/tinychat-tui/internal/ui/components"
	"github.com/jeranaias/tinychat-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Conductor drives turns. *turn.Coordinator satisfies it.
type Conductor interface {
	StartConversation(ctx context.Context, modelID, content string) error
	ResumeConversation(ctx context.Context, conversationID string) error
	SendMessage(ctx context.Context, conversationID, content, modelID string) error
}

// Seeder is the REST surface the UI needs. *api.Client satisfies it.
type Seeder interface {
	ListConversations(ctx context.Context) ([]*model.Conversation, error)
	GetConversation(ctx context.Context, id string) (*model.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	ListModels(ctx context.Context) ([]model.ModelInfo, error)
}

// Connector is the transport surface the UI needs. *transport.Manager
// satisfies it.
type Connector interface {
	Connect(ctx context.Context) error
	State() transport.State
}

// =============================================================================
// FOCUS
// =============================================================================

type focusArea int

const (
	focusSidebar focusArea = iota
	focusInput
)

// =============================================================================
// CHAT MODEL
// =============================================================================

const sidebarWidth = 32

// Model is the Bubble Tea model for the chat application.
type Model struct {
	// Configuration and styling
	cfg   *config.Config
	theme *styles.Theme

	// Wiring
	store     *store.Store
	conductor Conductor
	seeder    Seeder
	connector Connector
	events    *Events

	// Current store snapshot
	state store.State

	// Live turn indicator, keyed by conversation id
	activity    turn.Activity
	hasActivity bool

	// Model selection
	models        []model.ModelInfo
	selectedModel model.ModelInfo
	pickerOpen    bool
	pickerCursor  int

	// Focused conversation; empty means composing a new one
	activeConvID string

	// UI components
	sidebar   *components.Sidebar
	statusbar *components.StatusBar
	toast     *components.Toast
	markdown  *components.MarkdownRenderer
	viewport  viewport.Model
	input     textarea.Model
	spinner   spinner.Model

	// Layout
	focus  focusArea
	width  int
	height int
	ready  bool
}

// New creates the chat application model.
func New(cfg *config.Config, theme *styles.Theme, st *store.Store, conductor Conductor, seeder Seeder, connector Connector, events *Events) Model {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		cfg:       cfg,
		theme:     theme,
		store:     st,
		conductor: conductor,
		seeder:    seeder,
		connector: connector,
		events:    events,
		state:     st.Snapshot(),
		sidebar:   components.NewSidebar(theme),
		statusbar: components.NewStatusBar(theme),
		toast:     components.NewToast(theme),
		markdown:  components.NewMarkdownRenderer(72),
		input:     input,
		spinner:   sp,
		focus:     focusInput,
	}
}

// Init starts the initial connection, seed fetch, and event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.events.Wait(),
		connectCmd(m.connector),
		loadSeedCmd(m.seeder),
		m.spinner.Tick,
		textarea.Blink,
	)
}

// ActiveConversation returns the record whose messages are on screen, or
// nil when composing a new conversation.
func (m *Model) ActiveConversation() *model.Conversation {
	if m.activeConvID == "" {
		return nil
	}
	return m.state.Conversation(m.activeConvID)
}

// selectDefaultModel picks the configured model, falling back to the first
// the server reports.
func (m *Model) selectDefaultModel() {
	if m.cfg.DefaultModel != "" {
		if info, ok := model.FindModel(m.models, m.cfg.DefaultModel); ok {
			m.selectedModel = info
			return
		}
	}
	if info, ok := model.DefaultModel(m.models); ok {
		m.selectedModel = info
	}
}
