package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"mockinterview/internal/capture"
	"mockinterview/internal/clock"
	"mockinterview/internal/config"
	"mockinterview/internal/interview"
	"mockinterview/internal/logging"
	"mockinterview/internal/narration"
	"mockinterview/internal/schedule"
	"mockinterview/internal/scoring"
	"mockinterview/internal/services"
)

// Settings holds the pacing and wording knobs of a session.
type Settings struct {
	Timing             config.Timing
	InterviewerName    string
	DefaultRole        string
	PlaceholderNotes   string
	MinResponseSeconds int
	MaxResponseSeconds int
}

// SettingsFromConfig extracts Settings from the [interview] section.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Timing:             cfg.Timing(),
		InterviewerName:    cfg.Interview.InterviewerName,
		DefaultRole:        cfg.Interview.DefaultRole,
		PlaceholderNotes:   cfg.Interview.PlaceholderNotes,
		MinResponseSeconds: cfg.Interview.MinResponseSeconds,
		MaxResponseSeconds: cfg.Interview.MaxResponseSeconds,
	}
}

// Deps wires an Orchestrator. Store is required; everything else has a
// usable default.
type Deps struct {
	Store       Store
	Scorer      scoring.Scorer
	Capture     *capture.Manager
	Synthesizer narration.Synthesizer
	Voice       narration.Voice
	Scheduler   schedule.Scheduler
	Host        Host
	Metrics     Metrics
	Logger      *slog.Logger
	Settings    Settings
	Rand        *rand.Rand
}

// Orchestrator runs one interview session.
type Orchestrator struct {
	store    Store
	scorer   scoring.Scorer
	fallback scoring.Scorer
	capture  *capture.Manager
	narrator *narration.Queue
	clock    *clock.SessionClock
	sched    schedule.Scheduler
	host     Host
	metrics  Metrics
	settings Settings
	rng      *rand.Rand

	box  *mailbox
	done chan struct{}

	// Owned by the event loop.
	logger     *slog.Logger
	state      State
	session    *interview.Session
	notes      string
	speakingID uint64
	timers     map[uint64]schedule.Timer
	timerSeq   uint64
	preview    *capture.Preview
	deviceErr  string
	completing bool
	stopped    bool

	infoMu       sync.Mutex
	sessionID    string
	userID       string
	lastActivity time.Time
	final        *Snapshot
}

// New creates an orchestrator in NotStarted and starts its event loop.
func New(deps Deps) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "orchestrator", "new", "session store is required", nil)
	}
	o := &Orchestrator{
		store:    deps.Store,
		scorer:   deps.Scorer,
		fallback: scoring.NewRandomScorer(),
		capture:  deps.Capture,
		sched:    deps.Scheduler,
		host:     deps.Host,
		metrics:  deps.Metrics,
		settings: deps.Settings,
		rng:      deps.Rand,
		box:      newMailbox(),
		done:     make(chan struct{}),
		logger:   logging.NewComponentLogger(deps.Logger, "orchestrator"),
		state:    State{Phase: PhaseNotStarted},
		timers:   make(map[uint64]schedule.Timer),
	}
	if o.sched == nil {
		o.sched = schedule.NewReal()
	}
	if o.scorer == nil {
		o.scorer = o.fallback
	}
	if o.capture == nil {
		o.capture = capture.NewManager(capture.NoneSource{}, deps.Logger)
	}
	if o.host == nil {
		o.host = noopHost{}
	}
	if o.metrics == nil {
		o.metrics = noopMetrics{}
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	synth := deps.Synthesizer
	if synth == nil {
		synth = narration.NewTimedSynthesizer(o.sched, 0)
	}
	o.narrator = narration.NewQueue(synth, narration.Options{
		Voice:  deps.Voice,
		Logger: deps.Logger,
		OnStart: func(u narration.Utterance) {
			o.box.post(func() { o.onNarrationStart(u) })
		},
		OnEnd: func(end narration.End) {
			o.box.post(func() { o.onNarrationEnd(end) })
		},
	})
	o.clock = clock.New(o.sched, func(seconds int) {
		o.box.post(func() { o.onTick(seconds) })
	})
	o.lastActivity = o.sched.Now()

	go o.run()
	return o, nil
}

func (o *Orchestrator) run() {
	defer close(o.done)
	for {
		<-o.box.signal
		for _, fn := range o.box.take() {
			fn()
			if o.stopped {
				o.box.close()
				return
			}
		}
	}
}

// do runs fn on the event loop and waits for its result.
func (o *Orchestrator) do(ctx context.Context, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reply := make(chan error, 1)
	if !o.box.post(func() { reply <- fn() }) {
		return closedError()
	}
	select {
	case err := <-reply:
		return err
	case <-o.done:
		select {
		case err := <-reply:
			return err
		default:
			return closedError()
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func closedError() error {
	return services.Wrap(services.ErrSessionClosed, "orchestrator", "command", "session is no longer running", nil)
}

// after schedules fn on the event loop. Pending callbacks are dropped by
// clearTimers and at teardown.
func (o *Orchestrator) after(d time.Duration, fn func()) {
	o.timerSeq++
	id := o.timerSeq
	o.timers[id] = o.sched.AfterFunc(d, func() {
		o.box.post(func() {
			if _, ok := o.timers[id]; !ok {
				return
			}
			delete(o.timers, id)
			fn()
		})
	})
}

func (o *Orchestrator) clearTimers() {
	for id, timer := range o.timers {
		timer.Stop()
		delete(o.timers, id)
	}
}

// Done is closed once the event loop has stopped.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// SessionID returns the id of the started session, or "" before Start.
func (o *Orchestrator) SessionID() string {
	o.infoMu.Lock()
	defer o.infoMu.Unlock()
	return o.sessionID
}

// UserID returns the candidate that started the session.
func (o *Orchestrator) UserID() string {
	o.infoMu.Lock()
	defer o.infoMu.Unlock()
	return o.userID
}

// LastActivity reports when the candidate last issued a command.
func (o *Orchestrator) LastActivity() time.Time {
	o.infoMu.Lock()
	defer o.infoMu.Unlock()
	return o.lastActivity
}

func (o *Orchestrator) touch() {
	now := o.sched.Now()
	o.infoMu.Lock()
	o.lastActivity = now
	o.infoMu.Unlock()
}

// Snapshot returns the current state. After the loop stops it returns the
// state captured at teardown.
func (o *Orchestrator) Snapshot() Snapshot {
	var snap Snapshot
	err := o.do(context.Background(), func() error {
		snap = o.snapshot()
		return nil
	})
	if err != nil {
		o.infoMu.Lock()
		defer o.infoMu.Unlock()
		if o.final != nil {
			return *o.final
		}
		return Snapshot{State: State{Phase: PhaseExited}, Closed: true}
	}
	return snap
}

func (o *Orchestrator) snapshot() Snapshot {
	seconds := o.clock.Seconds()
	snap := Snapshot{
		State:            o.state,
		Speaking:         o.narrator.Speaking(),
		Recording:        o.state.Phase == PhaseRecording,
		Notes:            o.notes,
		Elapsed:          seconds,
		ElapsedText:      clock.FormatElapsed(seconds),
		PreviewAvailable: o.preview != nil,
		DeviceError:      o.deviceErr,
		Closed:           o.stopped,
	}
	if o.preview != nil {
		p := *o.preview
		snap.Preview = &p
	}
	if o.session != nil {
		snap.SessionID = o.session.ID
		snap.Total = len(o.session.Questions)
		snap.Session = o.session.Clone()
		if o.state.Index >= 0 && o.state.Index < len(o.session.Questions) && o.state.Phase != PhaseNotStarted {
			q := snap.Session.Questions[o.state.Index]
			snap.Question = &q
		}
	}
	return snap
}

// Close tears the session down without navigating. Safe to call repeatedly.
func (o *Orchestrator) Close(ctx context.Context) error {
	err := o.do(ctx, func() error {
		o.teardown()
		return nil
	})
	if errors.Is(err, services.ErrSessionClosed) {
		return nil
	}
	return err
}

// teardown releases every resource and stops the loop after the current
// closure returns.
func (o *Orchestrator) teardown() {
	o.clearTimers()
	o.clock.Stop()
	o.narrator.CancelAll()
	o.speakingID = 0
	o.releaseDevices()
	o.stopped = true

	snap := o.snapshot()
	o.infoMu.Lock()
	o.final = &snap
	o.infoMu.Unlock()
	o.logger.Debug("orchestrator stopped", logging.String(logging.FieldPhase, o.state.String()))
}

func (o *Orchestrator) releaseDevices() {
	// Failures are logged by the manager; the stream is dropped either way.
	_ = o.capture.Release()
	o.preview = nil
}

func (o *Orchestrator) publish(event Event) {
	event.State = o.state
	event.At = o.sched.Now().UTC()
	if o.session != nil {
		event.SessionID = o.session.ID
		event.UserID = o.session.UserID
	}
	o.host.Publish(event)
}

func (o *Orchestrator) setState(state State) {
	if state == o.state {
		return
	}
	o.state = state
	o.logger.Debug("phase changed", logging.String(logging.FieldPhase, state.String()))
	o.publish(Event{Type: EventPhaseChanged})
}
