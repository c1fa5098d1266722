// Package orchestrator drives one interview session from greeting to
// results.
//
// An Orchestrator owns a single event-loop goroutine. Commands from the API,
// narration callbacks, capture results, clock ticks, and scheduled follow-ups
// are all posted to an unbounded mailbox and applied one at a time, so the
// state machine never needs finer-grained locking:
//
//	NotStarted -> Previewing -> Narrating(greeting) -> AwaitingResponse(i)
//	  -> Recording(i) -> AwaitingResponse(i) -> Narrating(transition) ...
//	  -> Narrating(closing) -> Completed
//
// Exit is accepted from any phase and leaves the stored session in progress.
// Every exit path releases capture devices, silences narration, stops the
// clock, and drops pending timers. Sessions are persisted only through
// whole-object replacement.
package orchestrator
