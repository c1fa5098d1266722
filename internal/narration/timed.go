package narration

import (
	"context"
	"strings"
	"sync"
	"time"

	"mockinterview/internal/schedule"
)

const defaultMinUtterance = 500 * time.Millisecond

// TimedSynthesizer produces no audio. It holds each utterance for the time a
// speaker would need at WordsPerMinute.
type TimedSynthesizer struct {
	Sched          schedule.Scheduler
	WordsPerMinute int
	MinDuration    time.Duration
}

// NewTimedSynthesizer creates a timed synthesizer on sched.
func NewTimedSynthesizer(sched schedule.Scheduler, wordsPerMinute int) *TimedSynthesizer {
	if sched == nil {
		sched = schedule.NewReal()
	}
	return &TimedSynthesizer{Sched: sched, WordsPerMinute: wordsPerMinute, MinDuration: defaultMinUtterance}
}

// Duration estimates how long text takes to say.
func (s *TimedSynthesizer) Duration(text string) time.Duration {
	wpm := s.WordsPerMinute
	if wpm <= 0 {
		wpm = 160
	}
	words := len(strings.Fields(text))
	d := time.Duration(float64(words) / float64(wpm) * float64(time.Minute))
	if d < s.MinDuration {
		d = s.MinDuration
	}
	return d
}

// Play finishes after Duration(u.Text), or early with ctx.Err() on cancel.
func (s *TimedSynthesizer) Play(ctx context.Context, u Utterance, done func(error)) {
	var once sync.Once
	finish := func(err error) { once.Do(func() { done(err) }) }
	timer := s.Sched.AfterFunc(s.Duration(u.Text), func() { finish(nil) })
	context.AfterFunc(ctx, func() {
		if timer.Stop() {
			finish(ctx.Err())
		}
	})
}

// Voices is empty; the browser picks its own voice.
func (s *TimedSynthesizer) Voices(context.Context) ([]Voice, error) {
	return nil, nil
}
