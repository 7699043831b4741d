// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the interactive shell for ollamadesk.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// COLOR PALETTE
// =============================================================================

var (
	colorCyan    = lipgloss.Color("39")
	colorEmerald = lipgloss.Color("42")
	colorAmber   = lipgloss.Color("214")
	colorRed     = lipgloss.Color("196")
	colorGray    = lipgloss.Color("245")
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	// Info style for status lines
	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	// Command feedback style
	commandStyle = lipgloss.NewStyle().
			Foreground(colorEmerald)

	// Warning style
	warningStyle = lipgloss.NewStyle().
			Foreground(colorAmber)

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	// Welcome banner style
	welcomeStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)
)
