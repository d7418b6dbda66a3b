// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 15 * time.Second

// connectCmd opens the WebSocket connection.
func connectCmd(connector Connector) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return connectResultMsg{err: connector.Connect(ctx)}
	}
}

// loadSeedCmd fetches the conversation list and available models.
func loadSeedCmd(seeder Seeder) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		convs, err := seeder.ListConversations(ctx)
		if err != nil {
			return seedLoadedMsg{err: err}
		}
		models, err := seeder.ListModels(ctx)
		if err != nil {
			return seedLoadedMsg{conversations: convs, err: err}
		}
		return seedLoadedMsg{conversations: convs, models: models}
	}
}

// openConversationCmd fetches a conversation's history and asks the server
// to reload its context.
func openConversationCmd(seeder Seeder, conductor Conductor, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		conv, err := seeder.GetConversation(ctx, id)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		if err := conductor.ResumeConversation(ctx, id); err != nil {
			return historyLoadedMsg{conversation: conv, err: err}
		}
		return historyLoadedMsg{conversation: conv}
	}
}

// deleteConversationCmd removes a conversation on the server.
func deleteConversationCmd(seeder Seeder, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return conversationDeletedMsg{id: id, err: seeder.DeleteConversation(ctx, id)}
	}
}

// startConversationCmd opens a new conversation with a first message.
func startConversationCmd(conductor Conductor, modelID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return intentResultMsg{err: conductor.StartConversation(ctx, modelID, content)}
	}
}

// sendMessageCmd sends a message on the active conversation.
func sendMessageCmd(conductor Conductor, conversationID, content, modelID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return intentResultMsg{err: conductor.SendMessage(ctx, conversationID, content, modelID)}
	}
}
