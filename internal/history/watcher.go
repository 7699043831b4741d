// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides a searchable catalog of saved chats.
package history

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// WATCHER
// =============================================================================

// Watcher keeps the catalog in sync with the history directory. Save
// bursts (the .json and .txt land together) are absorbed by debouncing.
type Watcher struct {
	catalog  *Catalog
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time // path -> last change time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher over the catalog's history directory.
func NewWatcher(catalog *Catalog, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		catalog:  catalog,
		watcher:  fsw,
		debounce: 500 * time.Millisecond,
		logger:   logger,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching for record changes.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(w.catalog.dir); err != nil {
		return err
	}
	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// processEvents routes filesystem events into the pending set.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}
			// A rename is a removal of the old name; the new name
			// arrives as its own Create event.
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.mu.Lock()
				delete(w.pending, event.Name)
				w.mu.Unlock()
				if err := w.catalog.RemoveChat(event.Name); err != nil {
					w.logger.Warn("catalog removal failed",
						"path", event.Name, "error", err)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// processPending re-indexes settled files on a ticker.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var settled []string
			for path, changed := range w.pending {
				if now.Sub(changed) >= w.debounce {
					settled = append(settled, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range settled {
				if err := w.catalog.IndexChat(path); err != nil {
					w.logger.Warn("chat not indexed",
						"path", filepath.Base(path), "error", err)
				}
			}
		}
	}
}
