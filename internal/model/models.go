// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes a model available on the server, as reported by the
// GET /api/models endpoint.
type ModelInfo struct {
	// Name is the human-readable display name
	Name string `json:"name"`

	// Model is the identifier used in wire intents
	Model string `json:"model"`

	// Details carries additional model metadata
	Details ModelDetails `json:"details"`
}

// ModelDetails holds secondary model metadata.
type ModelDetails struct {
	// ParameterSize is the parameter count label, e.g. "7B"
	ParameterSize string `json:"parameter_size"`
}

// DisplayLabel returns a label suitable for the model selector.
func (m ModelInfo) DisplayLabel() string {
	if m.Details.ParameterSize == "" {
		return m.Name
	}
	return m.Name + " (" + m.Details.ParameterSize + ")"
}

// =============================================================================
// LOOKUP HELPERS
// =============================================================================

// FindModel returns the model with the given identifier from a list.
func FindModel(models []ModelInfo, id string) (ModelInfo, bool) {
	for _, m := range models {
		if m.Model == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// DefaultModel returns the first model in the list, the convention used to
// pick an initial selection after fetching the model list.
func DefaultModel(models []ModelInfo) (ModelInfo, bool) {
	if len(models) == 0 {
		return ModelInfo{}, false
	}
	return models[0], true
}
