// Package config loads, normalizes, and validates mockinterview configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and MOCKINTERVIEW_API_TOKEN. Narration pacing lives in the
// [interview] section so the settle and transition pauses can be tuned to the
// synthesizer in use.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical backend names, and clear validation errors.
package config
