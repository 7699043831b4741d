// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the session store for ollamadesk.
//
// The Store owns all mutable session state: connection settings, system
// prompt, generation parameters, the conversation log, and the identity of
// the chat on disk. Every mutation happens under one mutex, so readers
// always observe a consistent session.
//
// An epoch counter guards against stale completions: Clear and Load bump
// it, and AppendExchangeAt refuses to append when the caller's epoch is no
// longer current. A generation that started before a clear or load
// therefore cannot resurrect exchanges into the new session.
//
// # Key Types
//
//   - Store: the session store
//   - Snapshot: a consistent read of the session state
//
// # Usage
//
//	store := session.NewStore(settings, settingsPath, chats, logger)
//	epoch := store.Epoch()
//	// ... generation runs outside the lock ...
//	store.AppendExchangeAt(epoch, prompt, reply)
package session
