// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides a searchable catalog of saved chats.
package history

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ollamadesk/internal/model"
	"github.com/jeranaias/ollamadesk/internal/storage"
)

func newTestCatalog(t *testing.T) (*Catalog, *storage.ChatStore) {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewChatStore(filepath.Join(dir, "chat_history"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := Open(store.Dir, filepath.Join(dir, "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })

	return catalog, store
}

func saveChat(t *testing.T, store *storage.ChatStore, name string, exchanges ...model.Exchange) string {
	t.Helper()
	path, err := store.Save(name, &storage.ChatRecord{
		Model:        "llama3.2",
		Parameters:   map[string]float64{"temperature": 0.7},
		Conversation: exchanges,
	})
	require.NoError(t, err)
	return path
}

// =============================================================================
// REFRESH TESTS
// =============================================================================

func TestRefresh_IndexesChats(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	saveChat(t, store, "alpha", model.Exchange{User: "hi", Assistant: "hello"})
	saveChat(t, store, "beta",
		model.Exchange{User: "tell me about gophers", Assistant: "they burrow"},
		model.Exchange{User: "more", Assistant: "ok"})

	require.NoError(t, catalog.Refresh(ctx))

	n, err := catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := catalog.Chats(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		if e.Name == "beta" {
			assert.Equal(t, 2, e.ExchangeCount)
			assert.Equal(t, "llama3.2", e.Model)
		}
	}
}

func TestRefresh_SkipsCorrupted(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	saveChat(t, store, "good", model.Exchange{User: "hi", Assistant: "hello"})
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "bad.json"), []byte("{"), 0o644))

	require.NoError(t, catalog.Refresh(ctx))

	n, err := catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRefresh_PrunesDeleted(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	saveChat(t, store, "doomed", model.Exchange{User: "hi", Assistant: "hello"})
	require.NoError(t, catalog.Refresh(ctx))

	require.NoError(t, store.Delete("doomed"))
	require.NoError(t, catalog.Refresh(ctx))

	n, err := catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestIndexChat_ReplacesOnReindex(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	path := saveChat(t, store, "grow", model.Exchange{User: "one", Assistant: "1"})
	require.NoError(t, catalog.IndexChat(path))

	saveChat(t, store, "grow",
		model.Exchange{User: "one", Assistant: "1"},
		model.Exchange{User: "two", Assistant: "2"})
	require.NoError(t, catalog.IndexChat(path))

	entries, err := catalog.Chats(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].ExchangeCount)
}

// =============================================================================
// SEARCH TESTS
// =============================================================================

func TestSearch_FindsByContent(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	saveChat(t, store, "animals",
		model.Exchange{User: "tell me about gophers", Assistant: "gophers are burrowing rodents"})
	saveChat(t, store, "cooking",
		model.Exchange{User: "how do I poach an egg", Assistant: "simmer water first"})
	require.NoError(t, catalog.Refresh(ctx))

	results, err := catalog.Search(ctx, "gophers", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "animals", results[0].ChatName)
	assert.Equal(t, 1, results[0].Position)
	assert.Contains(t, results[0].AssistantText, "burrowing")
}

func TestSearch_PrefixMatch(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	saveChat(t, store, "chat", model.Exchange{User: "explain goroutines", Assistant: "lightweight threads"})
	require.NoError(t, catalog.Refresh(ctx))

	results, err := catalog.Search(ctx, "gorout", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_EmptyQuery(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	results, err := catalog.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_QuotesOperators(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	saveChat(t, store, "chat", model.Exchange{User: "plain text", Assistant: "reply"})
	require.NoError(t, catalog.Refresh(ctx))

	// FTS operator characters in user input must not break the query
	for _, q := range []string{`AND OR NOT`, `"quoted"`, `a-b`, `col:value`} {
		_, err := catalog.Search(ctx, q, 10)
		assert.NoError(t, err, "query %q", q)
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_IndexesNewChat(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	watcher, err := NewWatcher(catalog, logger)
	require.NoError(t, err)
	watcher.debounce = 50 * time.Millisecond
	require.NoError(t, watcher.Watch())
	defer watcher.Close()

	saveChat(t, store, "live", model.Exchange{User: "ping", Assistant: "pong"})

	require.Eventually(t, func() bool {
		n, err := catalog.Count(ctx)
		return err == nil && n == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcher_RemovesDeletedChat(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	path := saveChat(t, store, "gone", model.Exchange{User: "hi", Assistant: "hello"})
	require.NoError(t, catalog.IndexChat(path))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	watcher, err := NewWatcher(catalog, logger)
	require.NoError(t, err)
	require.NoError(t, watcher.Watch())
	defer watcher.Close()

	require.NoError(t, store.Delete("gone"))

	require.Eventually(t, func() bool {
		n, err := catalog.Count(ctx)
		return err == nil && n == 0
	}, 5*time.Second, 50*time.Millisecond)
}
