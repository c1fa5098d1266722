// Package sessions keeps the set of running interview orchestrators.
//
// The Registry enforces one running interview per candidate, starts generic
// or job-tailored sessions, reaps sessions that have been idle longer than
// the configured timeout, and forwards orchestrator events to the live UI
// publisher and the notification service. When an orchestrator stops, for
// any reason, its entry is removed and the candidate's active marker in the
// store is cleared.
package sessions
