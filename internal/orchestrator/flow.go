package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mockinterview/internal/capture"
	"mockinterview/internal/clock"
	"mockinterview/internal/interview"
	"mockinterview/internal/logging"
	"mockinterview/internal/narration"
)

func (o *Orchestrator) role() string {
	if role := strings.TrimSpace(o.session.Role); role != "" {
		return role
	}
	return o.settings.DefaultRole
}

// speak starts an utterance and enters Narrating at the current index.
func (o *Orchestrator) speak(kind narration.Kind, text string) {
	o.setState(State{Phase: PhaseNarrating, Index: o.state.Index, NarrationKind: kind})
	o.speakingID = o.narrator.Speak(narration.Item{Text: text, Kind: kind})
}

// silence stops narration and every scheduled follow-up.
func (o *Orchestrator) silence() {
	o.speakingID = 0
	o.narrator.CancelAll()
	o.clearTimers()
}

func (o *Orchestrator) askQuestion(i int) {
	if o.completing || o.state.Index != i {
		return
	}
	switch o.state.Phase {
	case PhasePreviewing, PhaseNarrating, PhaseAwaitingResponse:
	default:
		return
	}
	q := o.session.Questions[i]
	o.speak(narration.KindQuestion, interview.QuestionPrompt(i, len(o.session.Questions), q))
}

func (o *Orchestrator) advance(i int) {
	o.notes = ""
	o.clearTimers()
	o.state = State{Phase: PhaseAwaitingResponse, Index: i + 1}
	o.speak(narration.KindTransition, interview.TransitionRemark(i))
	o.after(o.settings.Timing.TransitionDelay, func() { o.askQuestion(i + 1) })
	o.logger.Info("question advanced", logging.Int(logging.FieldQuestionIndex, i+1))
}

func (o *Orchestrator) beginRecording() {
	i := o.state.Index
	q := o.session.Questions[i]
	if _, answered := o.session.ResponseFor(q.ID); answered {
		o.logger.Debug("question already answered; recording ignored", logging.Int(logging.FieldQuestionIndex, i))
		return
	}
	o.silence()
	o.notes = ""
	o.setState(State{Phase: PhaseRecording, Index: i})
	o.publish(Event{Type: EventRecordingStarted, Text: q.ID})
}

func (o *Orchestrator) closeResponse(ctx context.Context) error {
	i := o.state.Index
	q := o.session.Questions[i]
	notes := strings.TrimSpace(o.notes)
	if notes == "" {
		notes = o.settings.PlaceholderNotes
	}
	response := interview.Response{
		QuestionID:      q.ID,
		Notes:           notes,
		DurationSeconds: o.responseSeconds(),
		RecordedAt:      o.sched.Now().UTC(),
	}
	next := o.session.Clone()
	next.Responses = append(next.Responses, response)
	if err := o.store.ReplaceSession(ctx, next); err != nil {
		logging.ErrorWithContext(o.logger, "failed to save response", "response_save_failed",
			logging.Error(err),
			logging.Int(logging.FieldQuestionIndex, i),
			logging.String(logging.FieldErrorHint, "check the sessions database is writable"),
		)
		o.publish(Event{Type: EventError, Error: err.Error()})
		return fmt.Errorf("save response: %w", err)
	}

	o.session = next
	o.notes = ""
	o.setState(State{Phase: PhaseAwaitingResponse, Index: i})
	o.publish(Event{Type: EventResponseRecorded, Text: q.ID, Seconds: response.DurationSeconds})
	o.metrics.ResponseRecorded(response.DurationSeconds)
	o.logger.Info("response recorded",
		logging.Int(logging.FieldQuestionIndex, i),
		logging.Int("duration_seconds", response.DurationSeconds),
	)
	return nil
}

func (o *Orchestrator) responseSeconds() int {
	lo, hi := o.settings.MinResponseSeconds, o.settings.MaxResponseSeconds
	if hi < lo {
		hi = lo
	}
	return lo + o.rng.IntN(hi-lo+1)
}

// complete writes the evaluation, end time, and completed status in a single
// replacement, then plays the closing before navigating to results.
func (o *Orchestrator) complete(ctx context.Context) error {
	o.completing = true

	final := o.session.Clone()
	evaluation, err := o.evaluate(ctx, final)
	if err != nil {
		o.completing = false
		return err
	}
	ended := o.sched.Now().UTC()
	final.Evaluation = &evaluation
	final.EndedAt = &ended
	final.Status = interview.StatusCompleted
	if err := o.store.ReplaceSession(ctx, final); err != nil {
		o.completing = false
		logging.ErrorWithContext(o.logger, "failed to save evaluation", "evaluation_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the sessions database is writable; complete can be retried"),
		)
		o.publish(Event{Type: EventError, Error: err.Error()})
		return fmt.Errorf("save evaluation: %w", err)
	}

	o.session = final
	o.notes = ""
	o.silence()
	o.clock.Stop()
	elapsed := final.Elapsed(ended)
	o.metrics.SessionCompleted(evaluation.Overall, elapsed)
	o.publish(Event{Type: EventSessionCompleted, Evaluation: final.Evaluation, Seconds: o.clock.Seconds()})
	o.logger.Info("interview session completed",
		logging.Int("overall", evaluation.Overall),
		logging.Int("responses", len(final.Responses)),
		logging.String("scorer", evaluation.Scorer),
		logging.String("elapsed", clock.FormatElapsed(int(elapsed/time.Second))),
	)

	closing := interview.Closing(final.CandidateName, o.role())
	o.speak(narration.KindClosing, closing)
	o.after(o.closingDelay(closing), o.finishCompleted)
	return nil
}

func (o *Orchestrator) evaluate(ctx context.Context, session *interview.Session) (interview.Evaluation, error) {
	scoreCtx := ctx
	if timeout := o.settings.Timing.ScoringTimeout; timeout > 0 {
		var cancel context.CancelFunc
		scoreCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	evaluation, err := o.scorer.Score(scoreCtx, session)
	if err == nil {
		return evaluation, nil
	}
	logging.WarnWithContext(o.logger, "scorer failed; using placeholder scores", "scoring_failed",
		logging.String("scorer", o.scorer.Name()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the scoring configuration"),
		logging.String(logging.FieldImpact, "evaluation uses placeholder feedback"),
	)
	evaluation, err = o.fallback.Score(ctx, session)
	if err != nil {
		return interview.Evaluation{}, fmt.Errorf("score session: %w", err)
	}
	return evaluation, nil
}

func (o *Orchestrator) closingDelay(text string) time.Duration {
	delay := time.Duration(interview.WordCount(text)) * o.settings.Timing.ClosingPerWord
	if delay < o.settings.Timing.ClosingMinDelay {
		delay = o.settings.Timing.ClosingMinDelay
	}
	return delay
}

func (o *Orchestrator) finishCompleted() {
	o.silence()
	o.releaseDevices()
	o.setState(State{Phase: PhaseCompleted, Index: o.state.Index})
	o.host.NavigateTo(ViewResults, o.session.ID)
	o.publish(Event{Type: EventNavigate, View: ViewResults})
	o.teardown()
}

func (o *Orchestrator) exit() {
	// The evaluation is already saved; leaving during the closing goes to results.
	if o.completing {
		o.finishCompleted()
		return
	}
	previous := o.state
	o.silence()
	o.releaseDevices()
	o.clock.Stop()
	o.notes = ""
	o.setState(State{Phase: PhaseExited, Index: previous.Index})
	o.metrics.SessionExited(previous.Phase)

	sessionID := ""
	if o.session != nil {
		sessionID = o.session.ID
		o.logger.Info("interview session exited",
			logging.String(logging.FieldPhase, previous.String()),
			logging.Int("responses", len(o.session.Responses)),
		)
	}
	o.publish(Event{Type: EventSessionExited})
	o.host.NavigateTo(ViewDashboard, sessionID)
	o.publish(Event{Type: EventNavigate, View: ViewDashboard})
	o.teardown()
}

func (o *Orchestrator) acquireDevices() {
	timeout := o.settings.Timing.CaptureTimeout
	token := o.capture.Reserve()
	go func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		preview, err := o.capture.AcquireReserved(ctx, token)
		if !o.box.post(func() { o.onCaptureResult(preview, err) }) && err == nil {
			_ = o.capture.Release()
		}
	}()
}

func (o *Orchestrator) onCaptureResult(preview capture.Preview, err error) {
	if err != nil {
		o.deviceErr = err.Error()
		o.metrics.DeviceUnavailable()
		logging.WarnWithContext(o.logger, "camera or microphone unavailable", "device_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "grant camera and microphone access, then re-enter the interview"),
			logging.String(logging.FieldImpact, "interview continues without preview"),
		)
		o.publish(Event{Type: EventDeviceUnavailable, Error: err.Error()})
		return
	}
	if o.state.Terminal() {
		o.releaseDevices()
		return
	}
	o.preview = &preview
	o.deviceErr = ""
	o.publish(Event{Type: EventPreviewReady, Text: preview.StreamID})
}

func (o *Orchestrator) onNarrationStart(u narration.Utterance) {
	o.publish(Event{Type: EventNarrationStarted, Text: u.Text})
}

func (o *Orchestrator) onNarrationEnd(end narration.End) {
	o.metrics.NarrationEnded(end.Kind, end.Canceled)
	event := Event{Type: EventNarrationEnded, Text: end.Text, Canceled: end.Canceled}
	if end.Err != nil {
		event.Error = end.Err.Error()
	}
	o.publish(event)

	if end.ID != o.speakingID || o.state.Phase != PhaseNarrating {
		return
	}
	o.speakingID = 0
	switch end.Kind {
	case narration.KindGreeting:
		o.setState(State{Phase: PhasePreviewing, Index: o.state.Index})
	case narration.KindClosing:
		o.setState(State{Phase: PhaseCompleted, Index: o.state.Index})
	default:
		o.setState(State{Phase: PhaseAwaitingResponse, Index: o.state.Index})
	}
}

func (o *Orchestrator) onTick(seconds int) {
	o.publish(Event{Type: EventTick, Seconds: seconds, Elapsed: clock.FormatElapsed(seconds)})
}
