// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

// =============================================================================
// REQUEST TYPES
// =============================================================================

// GenerateRequest is the request body for the /api/generate endpoint.
// System is omitted from the wire payload entirely when empty; the server
// treats a missing system prompt differently from an empty one.
type GenerateRequest struct {
	Model   string             `json:"model"`
	Prompt  string             `json:"prompt"`
	Stream  bool               `json:"stream"`
	System  string             `json:"system,omitempty"`
	Options map[string]float64 `json:"options,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateResponse is the response from /api/generate. In streaming mode
// one of these arrives per line with Response carrying an incremental
// delta; the final fragment has Done set.
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// ModelInfo describes one model known to the server.
type ModelInfo struct {
	Name string `json:"name"`
}

// ListModelsResponse is the response from /api/tags.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// APIError is the error payload the Ollama server returns on failures.
type APIError struct {
	Error string `json:"error"`
}
