// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and
// generation parameters.
package model

import (
	"errors"
	"testing"
)

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_Append(t *testing.T) {
	conv := NewConversation()

	if !conv.IsEmpty() {
		t.Error("New conversation should be empty")
	}

	conv.Append("hi", "hello")
	conv.Append("how are you?", "")

	if conv.Len() != 2 {
		t.Fatalf("Len = %d, want 2", conv.Len())
	}

	exchanges := conv.Exchanges()
	if exchanges[0].User != "hi" || exchanges[0].Assistant != "hello" {
		t.Errorf("First exchange = %+v", exchanges[0])
	}
	// Empty assistant text is valid (aborted generation)
	if exchanges[1].Assistant != "" {
		t.Errorf("Second assistant = %q, want empty", exchanges[1].Assistant)
	}
}

func TestConversation_ExchangesIsCopy(t *testing.T) {
	conv := NewConversation()
	conv.Append("a", "b")

	exchanges := conv.Exchanges()
	exchanges[0].User = "mutated"

	if conv.Exchanges()[0].User != "a" {
		t.Error("Exchanges() must return a copy, not the backing slice")
	}
}

func TestConversation_Clear(t *testing.T) {
	conv := NewConversation()
	conv.Append("a", "b")
	conv.Clear()

	if !conv.IsEmpty() {
		t.Error("Conversation should be empty after Clear")
	}
}

func TestConversation_Replace(t *testing.T) {
	conv := NewConversation()
	conv.Append("old", "old")

	conv.Replace([]Exchange{
		{User: "u1", Assistant: "a1"},
		{User: "u2", Assistant: "a2"},
	})

	if conv.Len() != 2 {
		t.Fatalf("Len = %d, want 2", conv.Len())
	}
	if conv.Exchanges()[0].User != "u1" {
		t.Errorf("First user = %q, want u1", conv.Exchanges()[0].User)
	}
}

func TestConversation_Preview(t *testing.T) {
	conv := NewConversation()
	if conv.Preview(50) != "" {
		t.Error("Empty conversation preview should be empty")
	}

	conv.Append("line one\nline two", "reply")
	got := conv.Preview(50)
	if got != "line one line two" {
		t.Errorf("Preview = %q", got)
	}
}

// =============================================================================
// PARAMETER TESTS
// =============================================================================

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()

	for _, name := range ParameterNames() {
		if _, ok := p.Get(name); !ok {
			t.Errorf("Default parameters missing %q", name)
		}
	}
	if v, _ := p.Get(ParamTemperature); v != 0.7 {
		t.Errorf("temperature = %v, want 0.7", v)
	}
	if v, _ := p.Get(ParamMaxTokens); v != 2000 {
		t.Errorf("max_tokens = %v, want 2000", v)
	}
}

func TestParameters_SetRoundTrip(t *testing.T) {
	p := DefaultParameters()

	if err := p.Set("temperature", "1.25"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := p.Get("temperature"); v != 1.25 {
		t.Errorf("temperature = %v, want 1.25", v)
	}
}

func TestParameters_SetUnknownName(t *testing.T) {
	p := DefaultParameters()
	before := p.Snapshot()

	err := p.Set("frequency_penalty", "0.5")
	if !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("err = %v, want ErrUnknownParameter", err)
	}

	// State untouched
	for name, value := range before {
		if p[name] != value {
			t.Errorf("%s changed: %v -> %v", name, value, p[name])
		}
	}
	if _, ok := p["frequency_penalty"]; ok {
		t.Error("Unknown key must not enter the map")
	}
}

func TestParameters_SetInvalidValue(t *testing.T) {
	p := DefaultParameters()

	for _, raw := range []string{"abc", "", "NaN", "+Inf", "-Inf"} {
		err := p.Set("temperature", raw)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Set(temperature, %q) err = %v, want ErrInvalidValue", raw, err)
		}
	}

	if v, _ := p.Get("temperature"); v != 0.7 {
		t.Errorf("temperature = %v, want untouched 0.7", v)
	}
}

func TestParameters_Merge(t *testing.T) {
	p := DefaultParameters()
	p["temperature"] = 1.5

	p.Merge(map[string]float64{
		"top_k":       20,
		"mystery_key": 42, // unknown keys are dropped
	})

	if v, _ := p.Get("top_k"); v != 20 {
		t.Errorf("top_k = %v, want 20", v)
	}
	// Keys absent from the merged map are retained
	if v, _ := p.Get("temperature"); v != 1.5 {
		t.Errorf("temperature = %v, want retained 1.5", v)
	}
	if _, ok := p["mystery_key"]; ok {
		t.Error("Unknown key must not survive merge")
	}
}

func TestParameters_CloneIndependence(t *testing.T) {
	p := DefaultParameters()
	clone := p.Clone()
	clone["temperature"] = 2.0

	if v, _ := p.Get("temperature"); v != 0.7 {
		t.Errorf("Clone mutation leaked into original: %v", v)
	}
}
