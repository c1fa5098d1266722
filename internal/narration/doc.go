// Package narration plays the interviewer's spoken prompts.
//
// Queue guarantees at most one utterance in flight: Speak cancels whatever is
// playing before starting the new item, so a later prompt always wins.
// CancelAll silences everything, which is what happens when the candidate
// starts recording or leaves the interview. Start and end notifications are
// delivered per item and to an optional queue-wide listener; a canceled
// utterance ends with Canceled set and late completions from the synthesizer
// are dropped.
//
// Synthesizers:
//   - TimedSynthesizer estimates playback time from words per minute. The
//     daemon uses it when the browser speaks published narration events.
//   - CommandSynthesizer runs espeak-ng (or a compatible binary).
package narration
