// ollamadesk - a terminal client for chatting with a local Ollama server.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranaias/ollamadesk/internal/app"
	"github.com/jeranaias/ollamadesk/internal/cli"
	"github.com/jeranaias/ollamadesk/internal/config"
	"github.com/jeranaias/ollamadesk/internal/history"
	"github.com/jeranaias/ollamadesk/internal/session"
	"github.com/jeranaias/ollamadesk/internal/storage"
	"github.com/jeranaias/ollamadesk/internal/tasks"
)

// Version information (set at build time)
var (
	Version = "0.1.0"
)

func main() {
	dataDir := flag.String("dir", defaultDataDir(), "data directory for settings, logs, and saved chats")
	modelFlag := flag.String("model", "", "model to use for this run")
	urlFlag := flag.String("url", "", "Ollama base URL for this run")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("ollamadesk " + Version)
		return
	}

	if err := run(*dataDir, *modelFlag, *urlFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// defaultDataDir is ~/.ollamadesk, falling back to the working directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".ollamadesk")
}

func run(dataDir, modelFlag, urlFlag string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logger, closeLog := newLogger(filepath.Join(dataDir, "ollamadesk.log"))
	defer closeLog()
	logger.Info("starting", "version", Version, "data_dir", dataDir)

	// Settings: a malformed file logs and falls back to defaults
	settingsPath := filepath.Join(dataDir, "ollamadesk.toml")
	settings, err := config.Load(settingsPath)
	if err != nil {
		logger.Warn("settings fell back to defaults", "error", err)
	}
	if urlFlag != "" {
		normalized, err := config.ValidateBaseURL(urlFlag)
		if err != nil {
			return err
		}
		settings.Connection.BaseURL = normalized
	}
	if modelFlag != "" {
		settings.Connection.Model = modelFlag
	}

	historyDir := settings.Session.HistoryDir
	if !filepath.IsAbs(historyDir) {
		historyDir = filepath.Join(dataDir, historyDir)
	}
	chats, err := storage.NewChatStore(historyDir)
	if err != nil {
		return fmt.Errorf("failed to open chat store: %w", err)
	}

	store := session.NewStore(settings, settingsPath, chats, logger)
	runner := tasks.NewRunner(logger)
	ctrl := app.NewController(store, runner, logger)

	// The catalog is derived data; failures degrade search, not the app
	catalog, watcher := openCatalog(dataDir, historyDir, logger)
	if catalog != nil {
		defer catalog.Close()
	}
	if watcher != nil {
		defer watcher.Close()
	}

	shell := cli.NewShell(cli.Deps{
		Store:       store,
		Ctrl:        ctrl,
		Catalog:     catalog,
		Logger:      logger,
		HistoryFile: filepath.Join(dataDir, "input_history"),
	})
	defer shell.Close()

	shell.Run(context.Background())

	if !runner.Shutdown(5 * time.Second) {
		logger.Warn("background tasks abandoned at shutdown")
	}
	logger.Info("stopped")
	return nil
}

// newLogger builds the JSON file logger. Logging never blocks startup: if
// the file cannot be opened the logs are discarded.
func newLogger(path string) (*slog.Logger, func()) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return logger, func() { f.Close() }
}

// openCatalog opens the search catalog and its watcher, logging rather
// than failing when either cannot start.
func openCatalog(dataDir, historyDir string, logger *slog.Logger) (*history.Catalog, *history.Watcher) {
	catalog, err := history.Open(historyDir, filepath.Join(dataDir, "catalog.db"), logger)
	if err != nil {
		logger.Warn("history search unavailable", "error", err)
		return nil, nil
	}

	go func() {
		if err := catalog.Refresh(context.Background()); err != nil {
			logger.Warn("catalog refresh failed", "error", err)
		}
	}()

	watcher, err := history.NewWatcher(catalog, logger)
	if err != nil {
		logger.Warn("history watcher unavailable", "error", err)
		return catalog, nil
	}
	if err := watcher.Watch(); err != nil {
		logger.Warn("history watcher not started", "error", err)
		watcher.Close()
		return catalog, nil
	}
	return catalog, watcher
}
