// Command mockinterview is the operator CLI for the mock interview daemon.
//
// It runs the daemon in the foreground (serve), reports daemon and host
// readiness (status), browses and prunes stored sessions, previews question
// sets and narration voices, and can run a complete headless interview
// against the configured scorer (simulate).
package main
