// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat persistence for ollamadesk.
//
// Each saved chat is a file pair in the history directory: <name>.json
// holds the record (model, timestamp, system prompt, parameters, chat name,
// conversation) and <name>.txt holds a human-readable transcript. The
// transcript is derived output, regenerated on every save and never read
// back; the JSON record is the source of truth.
//
// # Key Types
//
//   - ChatStore: directory-backed store with Save/Load/Rename/List/Delete
//   - ChatRecord: the persisted chat with all session state
//   - ChatMeta: listing metadata without the full conversation
//
// # Usage
//
//	store, err := storage.NewChatStore("chat_history")
//	path, err := store.Save("chat_20250101_120000", record)
//	record, err := store.Load(path)
package storage
