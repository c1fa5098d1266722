package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mockinterview/internal/interview"
	"mockinterview/internal/services"
)

// CreateSession inserts a new session and stamps its UpdatedAt.
func (s *Store) CreateSession(ctx context.Context, session *interview.Session) error {
	if err := validate("create", session); err != nil {
		return err
	}
	stamp(session, s.now())
	enc, err := encodeSession(session)
	if err != nil {
		return err
	}

	_, err = s.execWithRetry(ctx, `INSERT INTO sessions (
            id, user_id, candidate_name, role, job_post_id, application_id, status,
            started_at, ended_at, questions_json, responses_json, evaluation_json, overall_score,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		nullableString(session.CandidateName),
		nullableString(session.Role),
		nullableString(session.JobPostID),
		nullableString(session.ApplicationID),
		string(session.Status),
		formatTime(session.StartedAt),
		nullableTime(session.EndedAt),
		enc.questions,
		enc.responses,
		enc.evaluation,
		enc.overall,
		formatTime(session.UpdatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return services.Wrap(services.ErrValidation, "sessionstore", "create", "session "+session.ID+" already exists", nil)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	s.notify(Change{Kind: ChangeCreated, Session: session.Clone(), UserID: session.UserID})
	return nil
}

// ReplaceSession swaps the stored session for session. Responses may only be
// appended, questions are fixed, and completed sessions are never reopened.
func (s *Store) ReplaceSession(ctx context.Context, session *interview.Session) error {
	if err := validate("replace", session); err != nil {
		return err
	}
	ctx = ensureContext(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		current, err := scanSession(tx.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", session.ID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return services.Wrap(services.ErrNotFound, "sessionstore", "replace", "session "+session.ID, nil)
			}
			return err
		}
		if err := checkReplacement(current, session); err != nil {
			return err
		}

		stamp(session, s.now())
		enc, err := encodeSession(session)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE sessions SET
                candidate_name = ?, role = ?, job_post_id = ?, application_id = ?, status = ?,
                started_at = ?, ended_at = ?, questions_json = ?, responses_json = ?,
                evaluation_json = ?, overall_score = ?, updated_at = ?
            WHERE id = ?`,
			nullableString(session.CandidateName),
			nullableString(session.Role),
			nullableString(session.JobPostID),
			nullableString(session.ApplicationID),
			string(session.Status),
			formatTime(session.StartedAt),
			nullableTime(session.EndedAt),
			enc.questions,
			enc.responses,
			enc.evaluation,
			enc.overall,
			formatTime(session.UpdatedAt),
			session.ID,
		); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return err
	}
	s.notify(Change{Kind: ChangeReplaced, Session: session.Clone(), UserID: session.UserID})
	return nil
}

// SetActiveSession marks session as the candidate's current interview.
func (s *Store) SetActiveSession(ctx context.Context, session *interview.Session) error {
	if session == nil || session.ID == "" {
		return services.Wrap(services.ErrValidation, "sessionstore", "set active", "session is required", nil)
	}
	_, err := s.execWithRetry(ctx, `INSERT INTO active_sessions (user_id, session_id, activated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET session_id = excluded.session_id, activated_at = excluded.activated_at`,
		session.UserID, session.ID, formatTime(s.now()))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return services.Wrap(services.ErrNotFound, "sessionstore", "set active", "session "+session.ID, nil)
		}
		return fmt.Errorf("set active session: %w", err)
	}
	s.notify(Change{Kind: ChangeActivated, Session: session.Clone(), UserID: session.UserID})
	return nil
}

// ClearActiveSession removes the candidate's active marker when it still
// points at sessionID.
func (s *Store) ClearActiveSession(ctx context.Context, userID, sessionID string) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM active_sessions WHERE user_id = ? AND session_id = ?", userID, sessionID)
	if err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notify(Change{Kind: ChangeCleared, UserID: userID})
	}
	return nil
}

// ActiveSession returns the candidate's active session.
func (s *Store) ActiveSession(ctx context.Context, userID string) (*interview.Session, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+prefixed("s.")+` FROM active_sessions a
        JOIN sessions s ON s.id = a.session_id WHERE a.user_id = ?`, userID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "sessionstore", "active session", "user "+userID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("active session: %w", err)
	}
	return session, nil
}

// Get fetches a session by id.
func (s *Store) Get(ctx context.Context, id string) (*interview.Session, error) {
	ctx = ensureContext(ctx)
	session, err := scanSession(s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "sessionstore", "get", "session "+id, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// List returns sessions matching filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]*interview.Session, error) {
	ctx = ensureContext(ctx)
	var (
		clauses []string
		args    []any
	)
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, "status IN ("+makePlaceholders(len(filter.Statuses))+")")
		for _, status := range filter.Statuses {
			args = append(args, string(status))
		}
	}
	query := "SELECT " + sessionColumns + " FROM sessions"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY started_at DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*interview.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

// DeleteSession removes a session that is not active. Missing ids are ignored.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions
        WHERE id = ? AND id NOT IN (SELECT session_id FROM active_sessions)`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var active int
		if err := s.db.QueryRowContext(ensureContext(ctx),
			`SELECT COUNT(1) FROM active_sessions WHERE session_id = ?`, id).Scan(&active); err != nil {
			return fmt.Errorf("check active session: %w", err)
		}
		if active > 0 {
			return services.Wrap(services.ErrInvalidTransition, "sessionstore", "delete", "session "+id+" is active", nil)
		}
		return nil
	}
	s.notify(Change{Kind: ChangeDeleted, Session: &interview.Session{ID: id}})
	return nil
}

// Prune deletes sessions last updated before cutoff that are not active.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions
        WHERE updated_at < ? AND id NOT IN (SELECT session_id FROM active_sessions)`,
		formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.notify(Change{Kind: ChangePruned, Count: n})
	}
	return n, nil
}

// Stats counts sessions per status.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("session stats: %w", err)
	}
	defer rows.Close()

	stats := make(Stats)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[interview.Status(status)] = count
	}
	return stats, rows.Err()
}

func prefixed(prefix string) string {
	cols := strings.Split(sessionColumns, ", ")
	for i, col := range cols {
		cols[i] = prefix + col
	}
	return strings.Join(cols, ", ")
}
