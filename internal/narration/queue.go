package narration

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"mockinterview/internal/logging"
)

// Options configures a Queue.
type Options struct {
	Voice   Voice
	Logger  *slog.Logger
	OnStart func(Utterance)
	OnEnd   func(End)
}

// Queue serializes narration: one utterance at a time, later speech wins.
type Queue struct {
	synth  Synthesizer
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	nextID  uint64
	current *inflight
}

type inflight struct {
	utt    Utterance
	item   Item
	cancel context.CancelFunc
}

// NewQueue creates a queue backed by synth.
func NewQueue(synth Synthesizer, opts Options) *Queue {
	return &Queue{
		synth:  synth,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "narration"),
	}
}

// Speak cancels any utterance in flight and starts item. It returns the id of
// the new utterance.
func (q *Queue) Speak(item Item) uint64 {
	ctx, cancel := context.WithCancel(context.Background())

	q.mu.Lock()
	previous := q.current
	q.nextID++
	utt := Utterance{ID: q.nextID, Text: item.Text, Kind: item.Kind, Voice: q.opts.Voice}
	q.current = &inflight{utt: utt, item: item, cancel: cancel}
	q.mu.Unlock()

	if previous != nil {
		previous.cancel()
		q.emitEnd(previous, End{Utterance: previous.utt, Canceled: true})
	}

	q.logger.Debug("speaking",
		logging.String("kind", string(item.Kind)),
		logging.Int("words", len(strings.Fields(item.Text))),
		logging.Int64("utterance_id", int64(utt.ID)),
	)
	q.emitStart(item, utt)
	q.synth.Play(ctx, utt, func(err error) { q.finish(utt.ID, err) })
	return utt.ID
}

// CancelAll silences the utterance in flight, if any.
func (q *Queue) CancelAll() {
	q.mu.Lock()
	current := q.current
	q.current = nil
	q.mu.Unlock()

	if current == nil {
		return
	}
	current.cancel()
	q.emitEnd(current, End{Utterance: current.utt, Canceled: true})
}

// Speaking reports whether an utterance is in flight.
func (q *Queue) Speaking() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current != nil
}

// Current returns the utterance in flight.
func (q *Queue) Current() (Utterance, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return Utterance{}, false
	}
	return q.current.utt, true
}

func (q *Queue) finish(id uint64, err error) {
	q.mu.Lock()
	current := q.current
	if current == nil || current.utt.ID != id {
		// Already canceled or superseded; the end was reported then.
		q.mu.Unlock()
		return
	}
	q.current = nil
	q.mu.Unlock()

	current.cancel()
	if err != nil {
		logging.WarnWithContext(q.logger, "narration playback failed", "narration_failed",
			logging.Error(err),
			logging.String("kind", string(current.utt.Kind)),
			logging.String(logging.FieldErrorHint, "check the speech synthesizer command"),
			logging.String(logging.FieldImpact, "prompt not heard; interview continues"),
		)
	}
	q.emitEnd(current, End{Utterance: current.utt, Err: err})
}

func (q *Queue) emitStart(item Item, utt Utterance) {
	if item.OnStart != nil {
		item.OnStart(utt)
	}
	if q.opts.OnStart != nil {
		q.opts.OnStart(utt)
	}
}

func (q *Queue) emitEnd(f *inflight, end End) {
	if f.item.OnEnd != nil {
		f.item.OnEnd(end)
	}
	if q.opts.OnEnd != nil {
		q.opts.OnEnd(end)
	}
}
