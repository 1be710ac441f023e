// Package logging assembles structured slog loggers and the attribute helpers
// used across coverkeep.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context-aware helpers that tag log lines with the reconciliation session,
// stage and correlation IDs. A no-op logger is provided for tests and for
// wiring code that runs before configuration is available.
package logging
