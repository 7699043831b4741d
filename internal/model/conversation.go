// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and
// generation parameters.
package model

import (
	"github.com/jeranaias/ollamadesk/internal/util"
)

// =============================================================================
// EXCHANGE TYPE
// =============================================================================

// Exchange is one user turn paired with one assistant turn. The assistant
// side may be empty, representing a failed or aborted generation. Exchanges
// are immutable once appended to a conversation.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered log of exchanges for the active session.
// The log is append-only while a session runs; it is replaced wholesale on
// load and emptied wholesale on clear.
type Conversation struct {
	exchanges []Exchange
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{exchanges: make([]Exchange, 0)}
}

// Append adds an exchange to the end of the log. Empty assistant text is
// valid: it records a generation that produced nothing.
func (c *Conversation) Append(userText, assistantText string) {
	c.exchanges = append(c.exchanges, Exchange{User: userText, Assistant: assistantText})
}

// Replace swaps the entire log for the given exchanges. Used on load.
func (c *Conversation) Replace(exchanges []Exchange) {
	c.exchanges = make([]Exchange, len(exchanges))
	copy(c.exchanges, exchanges)
}

// Clear empties the log. Irreversible; there is no undo buffer.
func (c *Conversation) Clear() {
	c.exchanges = make([]Exchange, 0)
}

// Exchanges returns a copy of the log in chat order.
func (c *Conversation) Exchanges() []Exchange {
	out := make([]Exchange, len(c.exchanges))
	copy(out, c.exchanges)
	return out
}

// Len returns the number of exchanges.
func (c *Conversation) Len() int {
	return len(c.exchanges)
}

// IsEmpty returns true if there are no exchanges.
func (c *Conversation) IsEmpty() bool {
	return len(c.exchanges) == 0
}

// Preview returns a short single-line preview from the first user turn.
func (c *Conversation) Preview(maxRunes int) string {
	if len(c.exchanges) == 0 {
		return ""
	}
	return util.TruncateRunes(util.Flatten(c.exchanges[0].User), maxRunes)
}
