// Package api serves the interview HTTP surface and live event stream.
//
// # Routes
//
// Session lifecycle lives under /api/sessions. POST /api/sessions starts a
// generic interview, or a job-tailored one when jobPostId and applicationId
// are supplied. Per-session commands (recording, notes, next, complete,
// exit) forward to the running orchestrator and answer with its snapshot.
// GET /api/sessions/:id/events upgrades to a WebSocket that receives every
// orchestrator event for that session, starting with a snapshot frame.
//
// GET /api/status reports daemon health and GET /metrics exposes Prometheus
// metrics. When a token is configured every /api route requires
// "Authorization: Bearer <token>".
//
// # Errors
//
// Failures are rendered as {"error": "..."} with the status chosen by
// services.HTTPStatus, so a missing job post is 404 and a command issued in
// the wrong phase is 409.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for browser consumers. The Hub never blocks
// an orchestrator: frames for a slow WebSocket client are dropped and the
// client is disconnected once its buffer stays full.
package api
