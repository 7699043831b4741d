// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides settings loading and persistence for ollamadesk.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/ollamadesk/internal/model"
	"github.com/jeranaias/ollamadesk/internal/util"
)

// =============================================================================
// SETTINGS STRUCTURES
// =============================================================================

// Settings represents the complete ollamadesk settings.
type Settings struct {
	Connection ConnectionConfig   `toml:"connection"`
	Session    SessionConfig      `toml:"session"`
	Parameters map[string]float64 `toml:"parameters"`
}

// ConnectionConfig contains the Ollama endpoint and model selection.
type ConnectionConfig struct {
	// BaseURL is the Ollama server origin (default: http://localhost:11434)
	BaseURL string `toml:"base_url"`
	// Model is the model name sent with generation requests
	Model string `toml:"model"`
}

// SessionConfig contains per-session defaults.
type SessionConfig struct {
	// SystemPrompt is prepended to every generation; empty means none
	SystemPrompt string `toml:"system_prompt"`
	// HistoryDir is where saved chats are written (default: chat_history)
	HistoryDir string `toml:"history_dir"`
}

// Default returns settings with built-in defaults.
func Default() *Settings {
	return &Settings{
		Connection: ConnectionConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
		},
		Session: SessionConfig{
			HistoryDir: "chat_history",
		},
		Parameters: model.DefaultParameters().Snapshot(),
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateBaseURL checks that raw is an absolute http or https URL with a
// host, and returns it normalized with any trailing slash removed.
func ValidateBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// fillDefaults replaces zero-valued fields after a partial decode. The
// parameter map is merged so keys the file omits keep their defaults.
func fillDefaults(s *Settings) {
	def := Default()
	if s.Connection.BaseURL == "" {
		s.Connection.BaseURL = def.Connection.BaseURL
	}
	if s.Connection.Model == "" {
		s.Connection.Model = def.Connection.Model
	}
	if s.Session.HistoryDir == "" {
		s.Session.HistoryDir = def.Session.HistoryDir
	}

	params := model.DefaultParameters()
	params.Merge(s.Parameters)
	s.Parameters = params.Snapshot()
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads settings from path. A missing file is not an error: defaults
// are returned. A malformed file also returns defaults, plus the parse
// error so the caller can log it; the returned settings are always usable.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return Default(), fmt.Errorf("failed to read settings: %w", err)
	}

	if _, err := toml.Decode(string(data), s); err != nil {
		return Default(), fmt.Errorf("failed to parse settings: %w", err)
	}
	fillDefaults(s)

	if normalized, err := ValidateBaseURL(s.Connection.BaseURL); err != nil {
		base := s.Connection.BaseURL
		s.Connection.BaseURL = Default().Connection.BaseURL
		return s, fmt.Errorf("settings base_url %q rejected: %w", base, err)
	} else {
		s.Connection.BaseURL = normalized
	}

	return s, nil
}

// Save writes settings to path atomically. The write goes through a temp
// file and rename so a crash never leaves a truncated settings file.
func Save(s *Settings, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Clone returns an independent copy.
func (s *Settings) Clone() *Settings {
	out := *s
	out.Parameters = make(map[string]float64, len(s.Parameters))
	for k, v := range s.Parameters {
		out.Parameters[k] = v
	}
	return &out
}
