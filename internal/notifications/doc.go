// Package notifications delivers interview milestones via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Enumerated event types cover the session lifecycle so the
// registry and daemon can emit consistent, recruiter-friendly messages
// without duplicating HTTP glue. Each event can be switched off in the
// [notifications] section.
package notifications
