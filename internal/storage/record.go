// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat persistence for ollamadesk.
package storage

import (
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/ollamadesk/internal/model"
	"github.com/jeranaias/ollamadesk/internal/util"
)

// =============================================================================
// CHAT RECORD
// =============================================================================

// ChatRecord represents a persisted chat. The timestamp is an ISO-8601
// string; it is treated as opaque on load so records written by other
// builds never fail to parse.
type ChatRecord struct {
	Model        string             `json:"model"`
	Timestamp    string             `json:"timestamp"`
	SystemPrompt string             `json:"system_prompt"`
	Parameters   map[string]float64 `json:"parameters"`
	ChatName     string             `json:"chat_name"`
	Conversation []model.Exchange   `json:"conversation"`
}

// ParseTimestamp returns the record's timestamp as a time.Time. Records
// may carry a zone offset or not; both forms are accepted. Returns the
// zero time when the field is empty or unparseable.
func (r *ChatRecord) ParseTimestamp() time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, r.Timestamp); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Preview returns a short single-line preview from the first user turn.
func (r *ChatRecord) Preview(maxRunes int) string {
	if len(r.Conversation) == 0 {
		return ""
	}
	return util.TruncateRunes(util.Flatten(r.Conversation[0].User), maxRunes)
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// transcriptRule separates exchanges in the rendered transcript.
var transcriptRule = strings.Repeat("-", 80)

// Transcript renders the record as the human-readable .txt companion:
// a header naming the model and save time, the system prompt when set,
// and the numbered exchanges separated by a dash rule.
func (r *ChatRecord) Transcript(savedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("Chat with Ollama (" + r.Model + ") - " + savedAt.Format("2006-01-02 15:04:05") + "\n\n")
	if r.SystemPrompt != "" {
		sb.WriteString("System prompt: " + r.SystemPrompt + "\n\n")
	}

	for i, exchange := range r.Conversation {
		n := strconv.Itoa(i + 1)
		sb.WriteString("[" + n + "] User: " + exchange.User + "\n\n")
		sb.WriteString("[" + n + "] Assistant: " + exchange.Assistant + "\n\n")
		sb.WriteString(transcriptRule + "\n\n")
	}

	return sb.String()
}
