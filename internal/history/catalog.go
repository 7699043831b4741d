// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides a searchable catalog of saved chats.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/ollamadesk/internal/storage"
)

// =============================================================================
// CATALOG
// =============================================================================

// Catalog indexes the history directory for listing and content search.
// All data is derived from the JSON records; the database can be deleted
// and rebuilt at any time.
type Catalog struct {
	db     *sql.DB
	dir    string
	store  *storage.ChatStore
	logger *slog.Logger

	// mu serializes writes; SQLite handles concurrent reads itself.
	mu sync.Mutex
}

// Open opens (or creates) the catalog database for the history directory.
func Open(dir, dbPath string, logger *slog.Logger) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// Writes are serialized through one connection so the per-connection
	// pragmas below always apply.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON", // Enable foreign key constraints
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Catalog{
		db:     db,
		dir:    dir,
		store:  &storage.ChatStore{Dir: dir},
		logger: logger,
	}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// =============================================================================
// REFRESH
// =============================================================================

// Refresh synchronizes the catalog with the history directory: changed
// records are re-indexed, unchanged ones skipped, and rows for deleted
// files dropped. Corrupted records are skipped without failing the pass.
func (c *Catalog) Refresh(ctx context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read history directory: %w", err)
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		seen[path] = true

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if c.upToDate(path, info.ModTime()) {
			continue
		}
		if err := c.IndexChat(path); err != nil {
			c.logger.Warn("chat not indexed", "path", path, "error", err)
		}
	}

	return c.pruneMissing(seen)
}

// upToDate reports whether the indexed mod time matches the file's.
func (c *Catalog) upToDate(path string, modTime time.Time) bool {
	var indexed int64
	err := c.db.QueryRow(`SELECT mod_time FROM chats WHERE path = ?`, path).Scan(&indexed)
	return err == nil && indexed == modTime.Unix()
}

// IndexChat (re)indexes a single record.
func (c *Catalog) IndexChat(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return c.RemoveChat(path)
	}

	record, err := c.store.Load(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Replace wholesale. Exchanges are deleted explicitly rather than via
	// the FK cascade so the FTS delete trigger always fires.
	if _, err := tx.Exec(`
		DELETE FROM exchanges WHERE chat_id IN (SELECT id FROM chats WHERE path = ?)`, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM chats WHERE path = ?`, path); err != nil {
		return err
	}

	var savedAt int64
	if t := record.ParseTimestamp(); !t.IsZero() {
		savedAt = t.Unix()
	}

	res, err := tx.Exec(`
		INSERT INTO chats (path, name, chat_name, model, saved_at, exchange_count, mod_time, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		path, stemOf(path), record.ChatName, record.Model, savedAt,
		len(record.Conversation), info.ModTime().Unix(), time.Now().Unix())
	if err != nil {
		return err
	}
	chatID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, exchange := range record.Conversation {
		if _, err := tx.Exec(`
			INSERT INTO exchanges (chat_id, position, user_text, assistant_text)
			VALUES (?, ?, ?, ?)`,
			chatID, i+1, exchange.User, exchange.Assistant); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RemoveChat drops a record's rows from the catalog.
func (c *Catalog) RemoveChat(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(`
		DELETE FROM exchanges WHERE chat_id IN (SELECT id FROM chats WHERE path = ?)`, path); err != nil {
		return err
	}
	_, err := c.db.Exec(`DELETE FROM chats WHERE path = ?`, path)
	return err
}

// pruneMissing drops rows whose files were not seen in the last scan.
func (c *Catalog) pruneMissing(seen map[string]bool) error {
	rows, err := c.db.Query(`SELECT path FROM chats`)
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var path string
		if rows.Scan(&path) == nil && !seen[path] {
			stale = append(stale, path)
		}
	}
	rows.Close()

	for _, path := range stale {
		if err := c.RemoveChat(path); err != nil {
			return err
		}
	}
	return nil
}

// stemOf returns the base filename without extension.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// LISTING
// =============================================================================

// ChatEntry is one catalog row.
type ChatEntry struct {
	Path          string
	Name          string
	ChatName      string
	Model         string
	SavedAt       time.Time
	ExchangeCount int
}

// Chats lists the cataloged chats, most recently saved first.
func (c *Catalog) Chats(ctx context.Context) ([]ChatEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT path, name, chat_name, model, saved_at, exchange_count
		FROM chats ORDER BY saved_at DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ChatEntry
	for rows.Next() {
		var e ChatEntry
		var savedAt int64
		if err := rows.Scan(&e.Path, &e.Name, &e.ChatName, &e.Model, &savedAt, &e.ExchangeCount); err != nil {
			return nil, err
		}
		if savedAt > 0 {
			e.SavedAt = time.Unix(savedAt, 0)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of cataloged chats.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats`).Scan(&n)
	return n, err
}
