// Package logging assembles structured slog loggers and formatting helpers used
// across mockinterview services.
//
// It owns the configurable console/JSON handlers, rotates the daemon log file,
// and exposes context-aware helpers so orchestrator code can tag log lines
// with session IDs and correlation IDs. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
