package interview

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of an interview session.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "inprogress"
	StatusCompleted  Status = "completed"
)

var allStatuses = []Status{StatusScheduled, StatusInProgress, StatusCompleted}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts a string into a Status, reporting whether it is known.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Category groups questions for pacing and feedback.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryBehavioral Category = "behavioral"
	CategoryTechnical  Category = "technical"
)

// ParseCategory converts a string into a Category, defaulting unknown values to general.
func ParseCategory(value string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryBehavioral:
		return CategoryBehavioral
	case CategoryTechnical:
		return CategoryTechnical
	default:
		return CategoryGeneral
	}
}

// Difficulty is an optional hint attached to authored questions.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is one prompt in an interview. Questions are fixed when a session starts.
type Question struct {
	ID               string     `json:"id" yaml:"id"`
	Text             string     `json:"text" yaml:"text"`
	Category         Category   `json:"category" yaml:"category"`
	ExpectedDuration int        `json:"expectedDuration" yaml:"expected_duration"`
	Difficulty       Difficulty `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Guidance         []string   `json:"guidance,omitempty" yaml:"guidance,omitempty"`
}

// Response is the candidate's recorded answer to a single question.
type Response struct {
	QuestionID      string    `json:"questionId"`
	Notes           string    `json:"notes,omitempty"`
	DurationSeconds int       `json:"durationSeconds"`
	RecordedAt      time.Time `json:"recordedAt"`
}

// Evaluation is the score bundle produced once, at session completion.
type Evaluation struct {
	Overall        int            `json:"overall"`
	Communication  int            `json:"communication"`
	Technical      int            `json:"technical"`
	BodyLanguage   int            `json:"bodyLanguage"`
	Confidence     int            `json:"confidence"`
	Presentation   int            `json:"presentation"`
	Feedback       string         `json:"feedback"`
	Strengths      []string       `json:"strengths"`
	Improvements   []string       `json:"improvements"`
	QuestionScores map[string]int `json:"questionScores"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	Scorer         string         `json:"scorer,omitempty"`
}

// Scores returns the six sub-scores keyed by their display name, in a stable order.
func (e Evaluation) Scores() []NamedScore {
	return []NamedScore{
		{Name: "overall", Value: e.Overall},
		{Name: "communication", Value: e.Communication},
		{Name: "technical", Value: e.Technical},
		{Name: "body_language", Value: e.BodyLanguage},
		{Name: "confidence", Value: e.Confidence},
		{Name: "presentation", Value: e.Presentation},
	}
}

// NamedScore pairs a sub-score with its name.
type NamedScore struct {
	Name  string
	Value int
}

// Session is one end-to-end interview attempt by one candidate.
type Session struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	CandidateName string      `json:"candidateName,omitempty"`
	Role          string      `json:"role,omitempty"`
	JobPostID     string      `json:"jobPostId,omitempty"`
	ApplicationID string      `json:"applicationId,omitempty"`
	StartedAt     time.Time   `json:"startedAt"`
	EndedAt       *time.Time  `json:"endedAt,omitempty"`
	Status        Status      `json:"status"`
	Questions     []Question  `json:"questions"`
	Responses     []Response  `json:"responses"`
	Evaluation    *Evaluation `json:"evaluation,omitempty"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Clone returns a deep copy so callers can build a replacement value without
// aliasing the stored one.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.EndedAt != nil {
		ended := *s.EndedAt
		cp.EndedAt = &ended
	}
	cp.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Guidance = append([]string(nil), q.Guidance...)
		cp.Questions[i] = q
	}
	cp.Responses = append([]Response(nil), s.Responses...)
	if s.Evaluation != nil {
		eval := *s.Evaluation
		eval.Strengths = append([]string(nil), s.Evaluation.Strengths...)
		eval.Improvements = append([]string(nil), s.Evaluation.Improvements...)
		eval.QuestionScores = make(map[string]int, len(s.Evaluation.QuestionScores))
		for k, v := range s.Evaluation.QuestionScores {
			eval.QuestionScores[k] = v
		}
		cp.Evaluation = &eval
	}
	return &cp
}

// ResponseFor returns the recorded response for a question, if any.
func (s *Session) ResponseFor(questionID string) (Response, bool) {
	for _, r := range s.Responses {
		if r.QuestionID == questionID {
			return r, true
		}
	}
	return Response{}, false
}

// QuestionIndex returns the position of a question, or -1 when it is not part of the session.
func (s *Session) QuestionIndex(questionID string) int {
	for i, q := range s.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

// Elapsed returns the session duration, measured to now while it is still open.
func (s *Session) Elapsed(now time.Time) time.Duration {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}

// ErrInvalidSession is returned by Validate when a session breaks a model invariant.
var ErrInvalidSession = errors.New("invalid session")

// Validate checks the model invariants every stored session must satisfy.
func (s *Session) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil session", ErrInvalidSession)
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSession)
	}
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidSession)
	}
	if _, ok := ParseStatus(string(s.Status)); !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSession, s.Status)
	}
	if len(s.Responses) > len(s.Questions) {
		return fmt.Errorf("%w: %d responses for %d questions", ErrInvalidSession, len(s.Responses), len(s.Questions))
	}
	// Questions may be skipped, but responses follow question order without repeats.
	last := -1
	for i, r := range s.Responses {
		pos := s.QuestionIndex(r.QuestionID)
		if pos < 0 {
			return fmt.Errorf("%w: response %d answers unknown question %q", ErrInvalidSession, i, r.QuestionID)
		}
		if pos <= last {
			return fmt.Errorf("%w: response %d for %q is out of order", ErrInvalidSession, i, r.QuestionID)
		}
		last = pos
	}
	completed := s.Status == StatusCompleted
	finalized := s.Evaluation != nil && s.EndedAt != nil
	if completed != finalized {
		return fmt.Errorf("%w: status %s with evaluation=%t end=%t", ErrInvalidSession, s.Status, s.Evaluation != nil, s.EndedAt != nil)
	}
	if s.Evaluation != nil {
		for _, score := range s.Evaluation.Scores() {
			if score.Value < 0 || score.Value > 100 {
				return fmt.Errorf("%w: %s score %d outside 0-100", ErrInvalidSession, score.Name, score.Value)
			}
		}
	}
	return nil
}
