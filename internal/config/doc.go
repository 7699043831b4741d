// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides settings loading and persistence for ollamadesk.
//
// Settings live in a single TOML file with [connection], [session], and
// [parameters] tables. Missing keys keep their defaults, unknown keys are
// ignored, and a malformed file falls back to defaults so startup never
// fails on a bad settings file.
//
// # Key Types
//
//   - Settings: the complete application settings
//   - ConnectionConfig: Ollama endpoint and model selection
//   - SessionConfig: system prompt and history directory
//
// # Usage
//
//	settings, err := config.Load(path)
//	if err != nil {
//	    // settings still usable: defaults were substituted
//	}
//	settings.Connection.Model = "mistral"
//	if err := config.Save(settings, path); err != nil { ... }
package config
