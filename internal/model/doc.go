// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and
// generation parameters.
//
// # Key Types
//
//   - Exchange: one user turn paired with one assistant turn
//   - Conversation: append-only ordered log of exchanges
//   - Parameters: the fixed set of generation parameters with validation
//
// # Usage
//
// Build a conversation:
//
//	conv := model.NewConversation()
//	conv.Append("Hello", "Hi there!")
//
// Work with parameters:
//
//	params := model.DefaultParameters()
//	err := params.Set("temperature", "0.8")
package model
