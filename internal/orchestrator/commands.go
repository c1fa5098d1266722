package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mockinterview/internal/interview"
	"mockinterview/internal/logging"
	"mockinterview/internal/narration"
	"mockinterview/internal/services"
)

// StartRequest describes the session to open.
type StartRequest struct {
	UserID        string
	CandidateName string
	Role          string
	JobPostID     string
	ApplicationID string
	Questions     []interview.Question
}

// Start creates the session, begins capture and the greeting. It fails with
// services.ErrPrecondition, creating nothing, when there is no user or no
// questions.
func (o *Orchestrator) Start(ctx context.Context, req StartRequest) (*interview.Session, error) {
	o.touch()
	var started *interview.Session
	err := o.do(ctx, func() error {
		session, err := o.start(ctx, req)
		started = session
		return err
	})
	return started, err
}

func (o *Orchestrator) start(ctx context.Context, req StartRequest) (*interview.Session, error) {
	if o.state.Phase != PhaseNotStarted {
		return nil, services.Wrap(services.ErrInvalidTransition, "orchestrator", "start", "session already started", nil)
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, services.Wrap(services.ErrPrecondition, "orchestrator", "start", "a signed-in candidate is required", nil)
	}
	if len(req.Questions) == 0 {
		return nil, services.Wrap(services.ErrPrecondition, "orchestrator", "start", "interview has no questions", nil)
	}

	session := &interview.Session{
		ID:            uuid.NewString(),
		UserID:        userID,
		CandidateName: strings.TrimSpace(req.CandidateName),
		Role:          strings.TrimSpace(req.Role),
		JobPostID:     req.JobPostID,
		ApplicationID: req.ApplicationID,
		StartedAt:     o.sched.Now().UTC(),
		Status:        interview.StatusInProgress,
		Questions:     cloneQuestions(req.Questions),
		Responses:     []interview.Response{},
	}
	if err := o.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := o.store.SetActiveSession(ctx, session); err != nil {
		o.discardSession(ctx, session.ID)
		return nil, fmt.Errorf("activate session: %w", err)
	}

	o.session = session
	o.infoMu.Lock()
	o.sessionID = session.ID
	o.userID = session.UserID
	o.infoMu.Unlock()
	o.logger = logging.WithContext(services.WithSessionID(context.Background(), session.ID), o.logger)

	o.state = State{Phase: PhasePreviewing}
	o.publish(Event{Type: EventSessionStarted, Text: o.role()})
	o.metrics.SessionStarted(session.JobPostID != "")
	o.logger.Info("interview session started",
		logging.String(logging.FieldUserID, session.UserID),
		logging.Int("questions", len(session.Questions)),
		logging.String("job_post_id", session.JobPostID),
	)

	o.clock.Start()
	o.acquireDevices()
	o.speak(narration.KindGreeting, interview.Greeting(session.CandidateName, o.role(), o.settings.InterviewerName))
	o.after(o.settings.Timing.GreetingSettle, func() { o.askQuestion(0) })
	return session.Clone(), nil
}

// ToggleRecording starts recording an answer, or closes the one being
// recorded. It does nothing while narration is playing, outside a question,
// or when the current question already has a response.
func (o *Orchestrator) ToggleRecording(ctx context.Context) error {
	o.touch()
	return o.do(ctx, func() error {
		switch o.state.Phase {
		case PhaseAwaitingResponse:
			o.beginRecording()
			return nil
		case PhaseRecording:
			return o.closeResponse(ctx)
		default:
			o.logger.Debug("recording toggle ignored", logging.String(logging.FieldPhase, o.state.String()))
			return nil
		}
	})
}

// SetNotes replaces the note buffer of the response being recorded.
func (o *Orchestrator) SetNotes(ctx context.Context, notes string) error {
	o.touch()
	return o.do(ctx, func() error {
		if o.state.Phase != PhaseRecording {
			return services.Wrap(services.ErrInvalidTransition, "orchestrator", "set notes",
				"notes can only be taken while recording (phase "+o.state.String()+")", nil)
		}
		o.notes = notes
		return nil
	})
}

// Next moves to the following question, or completes the interview when the
// current question is the last one.
func (o *Orchestrator) Next(ctx context.Context) error {
	o.touch()
	return o.do(ctx, func() error {
		if o.completing || o.state.Phase != PhaseAwaitingResponse {
			return services.Wrap(services.ErrInvalidTransition, "orchestrator", "next",
				"next requires a question awaiting a response (phase "+o.state.String()+")", nil)
		}
		i := o.state.Index
		if i >= len(o.session.Questions)-1 {
			return o.complete(ctx)
		}
		o.advance(i)
		return nil
	})
}

// Complete scores and closes the interview. It is accepted once, from the
// last question; later calls are no-ops.
func (o *Orchestrator) Complete(ctx context.Context) error {
	o.touch()
	return o.do(ctx, func() error {
		if o.completing || o.state.Phase == PhaseCompleted {
			return nil
		}
		if o.state.Phase != PhaseAwaitingResponse || o.state.Index != len(o.session.Questions)-1 {
			return services.Wrap(services.ErrInvalidTransition, "orchestrator", "complete",
				"complete requires the last question awaiting a response (phase "+o.state.String()+")", nil)
		}
		return o.complete(ctx)
	})
}

// Exit abandons the interview from any phase. The stored session keeps its
// in-progress status and the host is sent back to the dashboard.
func (o *Orchestrator) Exit(ctx context.Context) error {
	o.touch()
	return o.do(ctx, func() error {
		o.exit()
		return nil
	})
}

func cloneQuestions(questions []interview.Question) []interview.Question {
	out := make([]interview.Question, len(questions))
	for i, q := range questions {
		q.Guidance = append([]string(nil), q.Guidance...)
		out[i] = q
	}
	return out
}

// discardSession removes a session row that was created but never activated.
func (o *Orchestrator) discardSession(ctx context.Context, id string) {
	deleter, ok := o.store.(interface {
		DeleteSession(context.Context, string) error
	})
	if !ok {
		return
	}
	if err := deleter.DeleteSession(ctx, id); err != nil {
		logging.WarnWithContext(o.logger, "failed to discard unactivated session", "session_discard_failed",
			logging.Error(err),
			logging.String(logging.FieldSessionID, id),
			logging.String(logging.FieldImpact, "an in-progress session remains in history"),
		)
	}
}
