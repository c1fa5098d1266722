// Package daemon coordinates the long-running mockinterview process.
//
// It wires configuration, the session store, the session registry, the HTTP
// API, and the capture hotplug watcher into a single lifecycle with
// flock-based locking to prevent multiple instances. Maintenance runs on
// cron schedules: idle sessions are reaped and, when a retention window is
// configured, old inactive sessions are pruned.
//
// Keep orchestration logic here: interview behaviour lives in the
// orchestrator while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
