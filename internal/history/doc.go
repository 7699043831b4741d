// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides a searchable catalog of saved chats.
//
// The catalog is a SQLite database derived entirely from the JSON records
// in the history directory: it can be deleted and rebuilt at any time.
// Exchange text goes into an FTS5 table so past conversations are
// searchable by content, and an fsnotify watcher keeps the catalog in
// sync as chats are saved, renamed, and deleted.
//
// # Key Types
//
//   - Catalog: the SQLite-backed chat catalog
//   - SearchResult: one matching exchange with its chat
//   - Watcher: fsnotify-driven incremental refresh
//
// # Usage
//
//	catalog, err := history.Open(dir, dbPath, logger)
//	defer catalog.Close()
//	catalog.Refresh(ctx)
//	results, err := catalog.Search(ctx, "gophers", 20)
package history
