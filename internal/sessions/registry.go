package sessions

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"mockinterview/internal/capture"
	"mockinterview/internal/catalog"
	"mockinterview/internal/config"
	"mockinterview/internal/interview"
	"mockinterview/internal/logging"
	"mockinterview/internal/narration"
	"mockinterview/internal/notifications"
	"mockinterview/internal/orchestrator"
	"mockinterview/internal/schedule"
	"mockinterview/internal/scoring"
	"mockinterview/internal/services"
)

// Store is the persistence surface the registry and its orchestrators use.
type Store interface {
	orchestrator.Store
	ClearActiveSession(ctx context.Context, userID, sessionID string) error
}

// Publisher fans orchestrator events out to live clients.
type Publisher interface {
	Publish(event orchestrator.Event)
}

// Metrics extends the orchestrator metrics with registry gauges.
type Metrics interface {
	orchestrator.Metrics
	SetActive(n int)
	SessionsReaped(n int)
}

// Options wires a Registry. Config and Store are required.
type Options struct {
	Config      *config.Config
	Store       Store
	Catalog     catalog.Catalog
	Scorer      scoring.Scorer
	Synthesizer narration.Synthesizer
	Voice       narration.Voice
	Source      capture.Source
	Scheduler   schedule.Scheduler
	Notifier    notifications.Service
	Publisher   Publisher
	Metrics     Metrics
	Logger      *slog.Logger
}

// Registry owns every running orchestrator.
type Registry struct {
	opts     Options
	settings orchestrator.Settings
	idle     time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	byUser  map[string]*entry
	byID    map[string]*entry
	closed  bool
	pending sync.WaitGroup
}

type entry struct {
	orch      *orchestrator.Orchestrator
	userID    string
	sessionID string
	candidate string
	role      string
	questions int
	startedAt time.Time
}

// Summary describes one running session.
type Summary struct {
	SessionID    string             `json:"sessionId"`
	UserID       string             `json:"userId"`
	Candidate    string             `json:"candidate,omitempty"`
	Role         string             `json:"role,omitempty"`
	State        orchestrator.State `json:"state"`
	Elapsed      string             `json:"elapsed"`
	StartedAt    time.Time          `json:"startedAt"`
	LastActivity time.Time          `json:"lastActivity"`
}

// New builds a registry.
func New(opts Options) (*Registry, error) {
	if opts.Config == nil || opts.Store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "sessions", "new", "config and store are required", nil)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.NewReal()
	}
	if opts.Source == nil {
		opts.Source = capture.NoneSource{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notifications.NewService(&config.Config{})
	}
	return &Registry{
		opts:     opts,
		settings: orchestrator.SettingsFromConfig(opts.Config),
		idle:     opts.Config.IdleTimeout(),
		logger:   logging.NewComponentLogger(opts.Logger, "sessions"),
		byUser:   make(map[string]*entry),
		byID:     make(map[string]*entry),
	}, nil
}

// StartRequest opens a generic interview over the fallback questions.
type StartRequest struct {
	UserID        string `json:"userId"`
	CandidateName string `json:"candidateName"`
	Role          string `json:"role"`
}

// Start launches a generic interview.
func (r *Registry) Start(ctx context.Context, req StartRequest) (*orchestrator.Orchestrator, *interview.Session, error) {
	return r.launch(ctx, orchestrator.StartRequest{
		UserID:        req.UserID,
		CandidateName: req.CandidateName,
		Role:          req.Role,
		Questions:     interview.FallbackQuestions(),
	})
}

// StartForJob launches an interview tailored to a job post. An unresolved job
// post or application fails with services.ErrMissingContext before anything
// is created.
func (r *Registry) StartForJob(ctx context.Context, userID, jobPostID, applicationID string) (*orchestrator.Orchestrator, *interview.Session, error) {
	resolved, err := catalog.Resolve(ctx, r.opts.Catalog, userID, jobPostID, applicationID)
	if err != nil {
		return nil, nil, err
	}
	return r.launch(ctx, orchestrator.StartRequest{
		UserID:        userID,
		CandidateName: resolved.Application.CandidateName,
		Role:          resolved.JobPost.Title,
		JobPostID:     resolved.JobPost.ID,
		ApplicationID: resolved.Application.ID,
		Questions:     resolved.Questions(),
	})
}

func (r *Registry) launch(ctx context.Context, req orchestrator.StartRequest) (*orchestrator.Orchestrator, *interview.Session, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, nil, services.Wrap(services.ErrPrecondition, "sessions", "start", "a signed-in candidate is required", nil)
	}
	e := &entry{
		userID:    userID,
		candidate: interview.DisplayName(req.CandidateName),
		role:      req.Role,
		questions: len(req.Questions),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, nil, services.Wrap(services.ErrSessionClosed, "sessions", "start", "registry is shutting down", nil)
	}
	if current, ok := r.byUser[userID]; ok {
		r.mu.Unlock()
		return nil, nil, services.Wrap(services.ErrSessionActive, "sessions", "start",
			"candidate "+userID+" already has session "+current.sessionID+" running", nil)
	}
	r.byUser[userID] = e
	r.mu.Unlock()

	orch, err := orchestrator.New(orchestrator.Deps{
		Store:       r.opts.Store,
		Scorer:      r.opts.Scorer,
		Capture:     capture.NewManager(r.opts.Source, r.opts.Logger),
		Synthesizer: r.opts.Synthesizer,
		Voice:       r.opts.Voice,
		Scheduler:   r.opts.Scheduler,
		Host:        &host{registry: r, entry: e},
		Metrics:     r.metrics(),
		Logger:      r.opts.Logger,
		Settings:    r.settings,
	})
	if err != nil {
		r.release(e)
		return nil, nil, err
	}
	session, err := orch.Start(ctx, req)
	if err != nil {
		_ = orch.Close(context.Background())
		r.release(e)
		return nil, nil, err
	}

	r.mu.Lock()
	e.orch = orch
	e.sessionID = session.ID
	e.startedAt = session.StartedAt
	r.byID[session.ID] = e
	active := len(r.byID)
	r.mu.Unlock()
	r.setActive(active)

	go r.watch(e)
	return orch, session, nil
}

func (r *Registry) metrics() orchestrator.Metrics {
	if r.opts.Metrics == nil {
		return nil
	}
	return r.opts.Metrics
}

func (r *Registry) setActive(n int) {
	if r.opts.Metrics != nil {
		r.opts.Metrics.SetActive(n)
	}
}

// release drops a reservation that never became a running session.
func (r *Registry) release(e *entry) {
	r.mu.Lock()
	if r.byUser[e.userID] == e {
		delete(r.byUser, e.userID)
	}
	r.mu.Unlock()
}

// watch removes an entry once its orchestrator stops.
func (r *Registry) watch(e *entry) {
	<-e.orch.Done()

	r.mu.Lock()
	if r.byUser[e.userID] == e {
		delete(r.byUser, e.userID)
	}
	delete(r.byID, e.sessionID)
	active := len(r.byID)
	r.mu.Unlock()
	r.setActive(active)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.opts.Store.ClearActiveSession(ctx, e.userID, e.sessionID); err != nil {
		logging.WarnWithContext(r.logger, "failed to clear active session", "active_session_clear_failed",
			logging.String(logging.FieldSessionID, e.sessionID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "candidate may see a stale active interview"),
		)
	}
	r.logger.Debug("session unregistered", logging.String(logging.FieldSessionID, e.sessionID))
}

// Get returns the running orchestrator for a session id.
func (r *Registry) Get(sessionID string) (*orchestrator.Orchestrator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[sessionID]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "sessions", "get", "no running session "+sessionID, nil)
	}
	return e.orch, nil
}

// ForUser returns the candidate's running orchestrator.
func (r *Registry) ForUser(userID string) (*orchestrator.Orchestrator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byUser[userID]
	if !ok || e.orch == nil {
		return nil, services.Wrap(services.ErrNotFound, "sessions", "for user", "no running session for "+userID, nil)
	}
	return e.orch, nil
}

// Count reports how many sessions are running.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// List summarizes running sessions, oldest first.
func (r *Registry) List() []Summary {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		snap := e.orch.Snapshot()
		out = append(out, Summary{
			SessionID:    e.sessionID,
			UserID:       e.userID,
			Candidate:    e.candidate,
			Role:         e.role,
			State:        snap.State,
			Elapsed:      snap.ElapsedText,
			StartedAt:    e.startedAt,
			LastActivity: e.orch.LastActivity(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Reap closes sessions with no candidate command for longer than the idle
// timeout. It returns how many were closed.
func (r *Registry) Reap(ctx context.Context) int {
	if r.idle <= 0 {
		return 0
	}
	now := r.opts.Scheduler.Now()
	r.mu.Lock()
	var stale []*entry
	for _, e := range r.byID {
		if now.Sub(e.orch.LastActivity()) > r.idle {
			stale = append(stale, e)
		}
	}
	r.mu.Unlock()

	reaped := 0
	for _, e := range stale {
		if err := e.orch.Close(ctx); err != nil {
			logging.WarnWithContext(r.logger, "failed to close idle session", "session_reap_failed",
				logging.String(logging.FieldSessionID, e.sessionID),
				logging.Error(err),
			)
			continue
		}
		reaped++
		r.logger.Info("idle session closed",
			logging.String(logging.FieldSessionID, e.sessionID),
			logging.String(logging.FieldUserID, e.userID),
			logging.Duration("idle", now.Sub(e.orch.LastActivity())),
		)
	}
	if reaped > 0 && r.opts.Metrics != nil {
		r.opts.Metrics.SessionsReaped(reaped)
	}
	return reaped
}

// CloseAll tears down every session and rejects new ones. It waits for the
// orchestrators to stop and for queued notifications to finish.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	entries := make([]*entry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	for _, e := range entries {
		if err := e.orch.Close(ctx); err != nil {
			return err
		}
	}
	for _, e := range entries {
		select {
		case <-e.orch.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
