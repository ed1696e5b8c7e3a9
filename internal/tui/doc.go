// Package tui provides the terminal-facing pieces of git-mergefold.
//
// It handles:
//   - Structured logging and status reporting (Splog)
//   - Terminal styling and colors (using lipgloss and termenv)
//   - Interactive message editing (using survey)
package tui
