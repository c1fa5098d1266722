// Package services defines shared utilities consumed by the orchestrator, the
// HTTP API, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs and correlation identifiers for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures as
//     blocking (precondition, missing context) or absorbed (device, narration).
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform.
package services
