package sessionstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mockinterview/internal/interview"
)

const sessionColumns = "id, user_id, candidate_name, role, job_post_id, application_id, status, started_at, ended_at, questions_json, responses_json, evaluation_json, updated_at"

func scanSession(scanner interface{ Scan(dest ...any) error }) (*interview.Session, error) {
	var (
		id            string
		userID        string
		candidateName sql.NullString
		role          sql.NullString
		jobPostID     sql.NullString
		applicationID sql.NullString
		statusStr     string
		startedRaw    string
		endedRaw      sql.NullString
		questionsRaw  string
		responsesRaw  string
		evaluationRaw sql.NullString
		updatedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&userID,
		&candidateName,
		&role,
		&jobPostID,
		&applicationID,
		&statusStr,
		&startedRaw,
		&endedRaw,
		&questionsRaw,
		&responsesRaw,
		&evaluationRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	session := &interview.Session{
		ID:            id,
		UserID:        userID,
		CandidateName: candidateName.String,
		Role:          role.String,
		JobPostID:     jobPostID.String,
		ApplicationID: applicationID.String,
		Status:        interview.Status(statusStr),
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		session.StartedAt = started
	}
	if endedRaw.Valid {
		if ended, err := parseTimeString(endedRaw.String); err == nil {
			session.EndedAt = &ended
		}
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		session.UpdatedAt = updated
	}
	if err := json.Unmarshal([]byte(questionsRaw), &session.Questions); err != nil {
		return nil, fmt.Errorf("decode questions for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(responsesRaw), &session.Responses); err != nil {
		return nil, fmt.Errorf("decode responses for %s: %w", id, err)
	}
	if evaluationRaw.Valid && evaluationRaw.String != "" {
		var eval interview.Evaluation
		if err := json.Unmarshal([]byte(evaluationRaw.String), &eval); err != nil {
			return nil, fmt.Errorf("decode evaluation for %s: %w", id, err)
		}
		session.Evaluation = &eval
	}
	return session, nil
}

type encodedSession struct {
	questions  string
	responses  string
	evaluation any
	overall    any
}

func encodeSession(s *interview.Session) (encodedSession, error) {
	questions := s.Questions
	if questions == nil {
		questions = []interview.Question{}
	}
	responses := s.Responses
	if responses == nil {
		responses = []interview.Response{}
	}
	q, err := json.Marshal(questions)
	if err != nil {
		return encodedSession{}, fmt.Errorf("encode questions: %w", err)
	}
	r, err := json.Marshal(responses)
	if err != nil {
		return encodedSession{}, fmt.Errorf("encode responses: %w", err)
	}
	out := encodedSession{questions: string(q), responses: string(r)}
	if s.Evaluation != nil {
		e, err := json.Marshal(s.Evaluation)
		if err != nil {
			return encodedSession{}, fmt.Errorf("encode evaluation: %w", err)
		}
		out.evaluation = string(e)
		out.overall = s.Evaluation.Overall
	}
	return out, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
