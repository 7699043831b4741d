// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the interactive shell for ollamadesk.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/ollamadesk/internal/app"
	"github.com/jeranaias/ollamadesk/internal/history"
	"github.com/jeranaias/ollamadesk/internal/session"
)

// =============================================================================
// SHELL
// =============================================================================

// Deps carries the wired application services into the shell.
type Deps struct {
	Store   *session.Store
	Ctrl    *app.Controller
	Catalog *history.Catalog
	Logger  *slog.Logger

	// HistoryFile stores input-line history between runs
	HistoryFile string
}

// Shell is the interactive REPL.
type Shell struct {
	deps Deps
	line *liner.State
}

// NewShell creates the shell and loads input history.
func NewShell(deps Deps) *Shell {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	s := &Shell{deps: deps, line: line}
	s.loadHistory()
	return s
}

// loadHistory loads input-line history from file.
func (s *Shell) loadHistory() {
	if s.deps.HistoryFile == "" {
		return
	}
	if f, err := os.Open(s.deps.HistoryFile); err == nil {
		s.line.ReadHistory(f)
		f.Close()
	}
}

// saveHistory persists input-line history.
func (s *Shell) saveHistory() {
	if s.deps.HistoryFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.deps.HistoryFile), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(s.deps.HistoryFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	s.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (s *Shell) Close() {
	s.saveHistory()
	s.line.Close()
}

// =============================================================================
// REPL LOOP
// =============================================================================

// Run drives the REPL until quit, Ctrl+C, or Ctrl+D.
func (s *Shell) Run(ctx context.Context) {
	s.printWelcome(ctx)

	for {
		input, err := s.line.Prompt(promptStyle.Render("ollamadesk> "))
		if err != nil {
			// ErrPromptAborted is Ctrl+C, anything else is EOF
			fmt.Println()
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		s.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if !s.handleCommand(ctx, input) {
				return
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return
		}

		s.sendMessage(ctx, input)
	}
}

// printWelcome shows the banner and connection status.
func (s *Shell) printWelcome(ctx context.Context) {
	snap := s.deps.Store.Snapshot()

	fmt.Println(welcomeStyle.Render("ollamadesk"))
	fmt.Println(infoStyle.Render("model: "+snap.Model) + infoStyle.Render("  endpoint: "+snap.BaseURL))

	if !s.deps.Ctrl.CheckAvailable(ctx) {
		fmt.Println(warningStyle.Render("Ollama is not reachable at " + snap.BaseURL))
	}
	fmt.Println(infoStyle.Render("type /help for commands"))
	fmt.Println()

	// Warm the model cache in the background
	if _, err := s.deps.Ctrl.RefreshModelsAsync(); err != nil {
		s.deps.Logger.Warn("model refresh not started", "error", err)
	}
}

// sendMessage streams one generation to the terminal.
func (s *Shell) sendMessage(ctx context.Context, input string) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	text, err := s.deps.Ctrl.Send(reqCtx, input, func(delta string) {
		fmt.Print(delta)
	})
	fmt.Println()

	switch {
	case errors.Is(err, app.ErrGenerationInFlight):
		fmt.Println(warningStyle.Render("a generation is already running"))
		return
	case errors.Is(err, app.ErrSessionReplaced):
		fmt.Println(warningStyle.Render("session changed mid-generation; reply discarded"))
		return
	}

	// Re-render the complete reply as markdown on a TTY
	if isStdoutTTY() && looksLikeMarkdown(text) {
		fmt.Println()
		displayMarkdown(text)
	}
}

// looksLikeMarkdown is a cheap heuristic to avoid re-rendering prose.
func looksLikeMarkdown(text string) bool {
	return strings.Contains(text, "```") ||
		strings.Contains(text, "\n# ") ||
		strings.Contains(text, "\n- ") ||
		strings.Contains(text, "\n* ")
}
