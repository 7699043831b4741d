// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides settings loading and persistence for ollamadesk.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if s.Connection.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q", s.Connection.BaseURL)
	}
	if s.Connection.Model != "llama3.2" {
		t.Errorf("Model = %q", s.Connection.Model)
	}
	if s.Parameters["temperature"] != 0.7 {
		t.Errorf("temperature = %v", s.Parameters["temperature"])
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	os.WriteFile(path, []byte("this is [not toml"), 0o644)

	s, err := Load(path)
	if err == nil {
		t.Error("Expected parse error for malformed file")
	}
	// Still usable: defaults substituted
	if s == nil || s.Connection.Model != "llama3.2" {
		t.Fatalf("Settings = %+v, want defaults", s)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	os.WriteFile(path, []byte(`
[connection]
model = "mistral"

[parameters]
temperature = 1.2
unknown_knob = 5
`), 0o644)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Connection.Model != "mistral" {
		t.Errorf("Model = %q, want mistral", s.Connection.Model)
	}
	// Omitted keys keep defaults
	if s.Connection.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q, want default", s.Connection.BaseURL)
	}
	if s.Parameters["temperature"] != 1.2 {
		t.Errorf("temperature = %v, want 1.2", s.Parameters["temperature"])
	}
	if s.Parameters["top_p"] != 0.9 {
		t.Errorf("top_p = %v, want default 0.9", s.Parameters["top_p"])
	}
	// Unknown parameter keys are dropped
	if _, ok := s.Parameters["unknown_knob"]; ok {
		t.Error("Unknown parameter key must not survive load")
	}
}

func TestLoad_RejectsBadBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	os.WriteFile(path, []byte(`
[connection]
base_url = "ftp://example.com"
model = "mistral"
`), 0o644)

	s, err := Load(path)
	if err == nil {
		t.Error("Expected error for non-http base URL")
	}
	if s.Connection.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q, want default fallback", s.Connection.BaseURL)
	}
	// Other fields from the file survive
	if s.Connection.Model != "mistral" {
		t.Errorf("Model = %q, want mistral", s.Connection.Model)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	s := Default()
	s.Connection.Model = "codellama"
	s.Session.SystemPrompt = "be terse"
	s.Parameters["top_k"] = 10

	if err := Save(s, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Connection.Model != "codellama" {
		t.Errorf("Model = %q", got.Connection.Model)
	}
	if got.Session.SystemPrompt != "be terse" {
		t.Errorf("SystemPrompt = %q", got.Session.SystemPrompt)
	}
	if got.Parameters["top_k"] != 10 {
		t.Errorf("top_k = %v", got.Parameters["top_k"])
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"http://localhost:11434", "http://localhost:11434", false},
		{"https://ollama.internal:8443/", "https://ollama.internal:8443", false},
		{"  http://localhost:11434  ", "http://localhost:11434", false},
		{"localhost:11434", "", true},
		{"ftp://example.com", "", true},
		{"http://", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ValidateBaseURL(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ValidateBaseURL(%q) = %q, want error", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ValidateBaseURL(%q) failed: %v", tt.raw, err)
		} else if got != tt.want {
			t.Errorf("ValidateBaseURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestClone_Independence(t *testing.T) {
	s := Default()
	clone := s.Clone()
	clone.Parameters["temperature"] = 9
	clone.Connection.Model = "other"

	if s.Parameters["temperature"] == 9 {
		t.Error("Clone parameter mutation leaked into original")
	}
	if s.Connection.Model == "other" {
		t.Error("Clone field mutation leaked into original")
	}
}
