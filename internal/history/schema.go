// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides a searchable catalog of saved chats.
package history

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// SQLite schema for the chat catalog with FTS (Full Text Search)
const Schema = `
-- Metadata table for schema version and catalog state
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Chats table: one row per saved chat record
CREATE TABLE IF NOT EXISTS chats (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,          -- filename stem
    chat_name TEXT NOT NULL,     -- display name from the record
    model TEXT,
    saved_at INTEGER,            -- Unix timestamp from the record
    exchange_count INTEGER NOT NULL,
    mod_time INTEGER NOT NULL,   -- Unix timestamp of the file
    indexed_at INTEGER NOT NULL  -- Unix timestamp
);

CREATE INDEX IF NOT EXISTS idx_chats_path ON chats(path);
CREATE INDEX IF NOT EXISTS idx_chats_saved_at ON chats(saved_at);

-- Exchanges table: conversation turns for search
CREATE TABLE IF NOT EXISTS exchanges (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_id INTEGER NOT NULL,
    position INTEGER NOT NULL,   -- 1-based index within the chat
    user_text TEXT NOT NULL,
    assistant_text TEXT NOT NULL,
    FOREIGN KEY(chat_id) REFERENCES chats(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_exchanges_chat_id ON exchanges(chat_id);

-- Full-text search virtual table for exchanges
CREATE VIRTUAL TABLE IF NOT EXISTS exchanges_fts USING fts5(
    user_text,
    assistant_text,
    content='exchanges',
    content_rowid='id',
    tokenize='porter unicode61'
);

-- Triggers to keep FTS table in sync
CREATE TRIGGER IF NOT EXISTS exchanges_ai AFTER INSERT ON exchanges BEGIN
    INSERT INTO exchanges_fts(rowid, user_text, assistant_text)
    VALUES (new.id, new.user_text, new.assistant_text);
END;

CREATE TRIGGER IF NOT EXISTS exchanges_ad AFTER DELETE ON exchanges BEGIN
    INSERT INTO exchanges_fts(exchanges_fts, rowid, user_text, assistant_text)
    VALUES ('delete', old.id, old.user_text, old.assistant_text);
END;
`

// InitMetadata initializes the metadata table with default values
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
