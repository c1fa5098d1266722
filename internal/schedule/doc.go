// Package schedule provides the timer abstraction the orchestrator and its
// collaborators use for every delayed or periodic callback.
//
// Real wraps the time package. Manual is a virtual clock driven by Advance,
// which lets tests step through settle delays, transition delays, and clock
// ticks deterministically.
package schedule
