// Package sessionstore persists interview sessions.
//
// Sessions are written whole: CreateSession inserts a new value and
// ReplaceSession swaps the stored value for a complete replacement. Every
// write is validated against the interview model invariants, and a
// replacement may only extend the stored response list and may never reopen a
// completed session. SetActiveSession records which session a candidate is
// currently taking.
//
// Store is backed by SQLite (modernc.org/sqlite) and is what the daemon uses.
// Memory implements the same contract in process for the simulator and tests.
// Both deliver a Change to subscribers after each successful write.
package sessionstore
