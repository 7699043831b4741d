// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the interactive shell for ollamadesk.
//
// The shell is a liner-backed REPL: plain input goes to the model and the
// reply streams to the terminal, while slash commands drive the session
// (save, load, rename, clear, model and parameter changes, history
// search, export). Markdown replies are re-rendered with glamour when
// stdout is a terminal.
//
// # Usage
//
//	shell, err := cli.NewShell(deps)
//	defer shell.Close()
//	shell.Run(ctx)
package cli
