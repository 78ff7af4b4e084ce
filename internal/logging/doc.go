// Package logging assembles structured slog loggers and formatting helpers used
// across storyreel.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code tags log lines
// with episode numbers, stage names and run identifiers. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
