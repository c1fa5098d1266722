package sessionstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"mockinterview/internal/interview"
	"mockinterview/internal/services"
)

// Memory is an in-process session store with the same rules as Store.
type Memory struct {
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*interview.Session
	active   map[string]string

	subMu sync.Mutex
	subs  subscribers
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		sessions: make(map[string]*interview.Session),
		active:   make(map[string]string),
	}
}

// CreateSession stores a copy of session.
func (m *Memory) CreateSession(_ context.Context, session *interview.Session) error {
	if err := validate("create", session); err != nil {
		return err
	}
	m.mu.Lock()
	if _, exists := m.sessions[session.ID]; exists {
		m.mu.Unlock()
		return services.Wrap(services.ErrValidation, "sessionstore", "create", "session "+session.ID+" already exists", nil)
	}
	stamp(session, m.now())
	m.sessions[session.ID] = session.Clone()
	m.mu.Unlock()

	m.notify(Change{Kind: ChangeCreated, Session: session.Clone(), UserID: session.UserID})
	return nil
}

// ReplaceSession swaps the stored copy for session.
func (m *Memory) ReplaceSession(_ context.Context, session *interview.Session) error {
	if err := validate("replace", session); err != nil {
		return err
	}
	m.mu.Lock()
	current, ok := m.sessions[session.ID]
	if !ok {
		m.mu.Unlock()
		return services.Wrap(services.ErrNotFound, "sessionstore", "replace", "session "+session.ID, nil)
	}
	if err := checkReplacement(current, session); err != nil {
		m.mu.Unlock()
		return err
	}
	stamp(session, m.now())
	m.sessions[session.ID] = session.Clone()
	m.mu.Unlock()

	m.notify(Change{Kind: ChangeReplaced, Session: session.Clone(), UserID: session.UserID})
	return nil
}

// SetActiveSession marks session as the candidate's current interview.
func (m *Memory) SetActiveSession(_ context.Context, session *interview.Session) error {
	if session == nil || session.ID == "" {
		return services.Wrap(services.ErrValidation, "sessionstore", "set active", "session is required", nil)
	}
	m.mu.Lock()
	if _, ok := m.sessions[session.ID]; !ok {
		m.mu.Unlock()
		return services.Wrap(services.ErrNotFound, "sessionstore", "set active", "session "+session.ID, nil)
	}
	m.active[session.UserID] = session.ID
	m.mu.Unlock()

	m.notify(Change{Kind: ChangeActivated, Session: session.Clone(), UserID: session.UserID})
	return nil
}

// ClearActiveSession removes the active marker when it points at sessionID.
func (m *Memory) ClearActiveSession(_ context.Context, userID, sessionID string) error {
	m.mu.Lock()
	cleared := m.active[userID] == sessionID
	if cleared {
		delete(m.active, userID)
	}
	m.mu.Unlock()
	if cleared {
		m.notify(Change{Kind: ChangeCleared, UserID: userID})
	}
	return nil
}

// ActiveSession returns the candidate's active session.
func (m *Memory) ActiveSession(_ context.Context, userID string) (*interview.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.active[userID]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "sessionstore", "active session", "user "+userID, nil)
	}
	return m.sessions[id].Clone(), nil
}

// Get fetches a copy of a session.
func (m *Memory) Get(_ context.Context, id string) (*interview.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "sessionstore", "get", "session "+id, nil)
	}
	return session.Clone(), nil
}

// List returns sessions matching filter, newest first.
func (m *Memory) List(_ context.Context, filter Filter) ([]*interview.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[interview.Status]bool, len(filter.Statuses))
	for _, status := range filter.Statuses {
		wanted[status] = true
	}
	var out []*interview.Session
	for _, session := range m.sessions {
		if filter.UserID != "" && session.UserID != filter.UserID {
			continue
		}
		if len(wanted) > 0 && !wanted[session.Status] {
			continue
		}
		out = append(out, session.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// DeleteSession removes a session that is not active. Missing ids are ignored.
func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	for _, activeID := range m.active {
		if activeID == id {
			m.mu.Unlock()
			return services.Wrap(services.ErrInvalidTransition, "sessionstore", "delete", "session "+id+" is active", nil)
		}
	}
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		m.notify(Change{Kind: ChangeDeleted, Session: session.Clone(), UserID: session.UserID})
	}
	return nil
}

// Prune deletes inactive sessions last updated before cutoff.
func (m *Memory) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	activeIDs := make(map[string]bool, len(m.active))
	for _, id := range m.active {
		activeIDs[id] = true
	}
	var n int64
	for id, session := range m.sessions {
		if !activeIDs[id] && session.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	m.mu.Unlock()
	if n > 0 {
		m.notify(Change{Kind: ChangePruned, Count: n})
	}
	return n, nil
}

// Stats counts sessions per status.
func (m *Memory) Stats(context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := make(Stats)
	for _, session := range m.sessions {
		stats[session.Status]++
	}
	return stats, nil
}

// Subscribe registers fn for every future change.
func (m *Memory) Subscribe(fn func(Change)) func() {
	m.subMu.Lock()
	id := m.subs.add(fn)
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subs.fns, id)
		m.subMu.Unlock()
	}
}

func (m *Memory) notify(change Change) {
	m.subMu.Lock()
	fns := m.subs.list()
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(change)
	}
}
