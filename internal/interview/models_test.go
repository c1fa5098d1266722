package interview_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"mockinterview/internal/interview"
)

func newSession(t *testing.T) *interview.Session {
	t.Helper()
	return &interview.Session{
		ID:        "session-1",
		UserID:    "user-1",
		StartedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Status:    interview.StatusInProgress,
		Questions: interview.FallbackQuestions(),
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := interview.ParseStatus(" InProgress "); !ok || status != interview.StatusInProgress {
		t.Fatalf("expected inprogress, got %q ok=%v", status, ok)
	}
	if _, ok := interview.ParseStatus("archived"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if len(interview.AllStatuses()) != 3 {
		t.Fatalf("unexpected statuses: %v", interview.AllStatuses())
	}
}

func TestParseCategoryDefaultsToGeneral(t *testing.T) {
	if got := interview.ParseCategory("Technical"); got != interview.CategoryTechnical {
		t.Fatalf("expected technical, got %q", got)
	}
	if got := interview.ParseCategory("situational"); got != interview.CategoryGeneral {
		t.Fatalf("expected general fallback, got %q", got)
	}
}

func TestValidateAcceptsInProgressSession(t *testing.T) {
	session := newSession(t)
	session.Responses = []interview.Response{
		{QuestionID: session.Questions[0].ID, DurationSeconds: 45},
		{QuestionID: session.Questions[2].ID, DurationSeconds: 60},
	}
	if err := session.Validate(); err != nil {
		t.Fatalf("expected valid session, got %v", err)
	}
}

func TestValidateRejectsBrokenInvariants(t *testing.T) {
	ended := time.Date(2026, 3, 1, 10, 20, 0, 0, time.UTC)
	cases := []struct {
		name   string
		mutate func(*interview.Session)
		want   string
	}{
		{"missing user", func(s *interview.Session) { s.UserID = "" }, "missing user id"},
		{"unknown status", func(s *interview.Session) { s.Status = "paused" }, "unknown status"},
		{"too many responses", func(s *interview.Session) {
			s.Questions = s.Questions[:1]
			s.Responses = []interview.Response{{QuestionID: s.Questions[0].ID}, {QuestionID: "x"}}
		}, "responses for"},
		{"unknown question", func(s *interview.Session) {
			s.Responses = []interview.Response{{QuestionID: "nope"}}
		}, "unknown question"},
		{"duplicate response", func(s *interview.Session) {
			id := s.Questions[1].ID
			s.Responses = []interview.Response{{QuestionID: id}, {QuestionID: id}}
		}, "out of order"},
		{"completed without evaluation", func(s *interview.Session) {
			s.Status = interview.StatusCompleted
			s.EndedAt = &ended
		}, "evaluation=false"},
		{"evaluation while in progress", func(s *interview.Session) {
			s.Evaluation = &interview.Evaluation{Overall: 80}
			s.EndedAt = &ended
		}, "status inprogress"},
		{"score out of range", func(s *interview.Session) {
			s.Status = interview.StatusCompleted
			s.EndedAt = &ended
			s.Evaluation = &interview.Evaluation{Overall: 101}
		}, "overall score 101"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := newSession(t)
			tc.mutate(session)
			err := session.Validate()
			if !errors.Is(err, interview.ErrInvalidSession) {
				t.Fatalf("expected ErrInvalidSession, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ended := time.Date(2026, 3, 1, 10, 20, 0, 0, time.UTC)
	session := newSession(t)
	session.Responses = []interview.Response{{QuestionID: session.Questions[0].ID, Notes: "first"}}
	session.EndedAt = &ended
	session.Evaluation = &interview.Evaluation{
		Strengths:      []string{"clear"},
		QuestionScores: map[string]int{session.Questions[0].ID: 80},
	}

	clone := session.Clone()
	clone.Responses[0].Notes = "changed"
	clone.Questions[0].Guidance[0] = "changed"
	clone.Evaluation.Strengths[0] = "changed"
	clone.Evaluation.QuestionScores[session.Questions[0].ID] = 10
	*clone.EndedAt = ended.Add(time.Hour)

	if session.Responses[0].Notes != "first" {
		t.Fatal("responses aliased")
	}
	if session.Questions[0].Guidance[0] == "changed" {
		t.Fatal("guidance aliased")
	}
	if session.Evaluation.Strengths[0] != "clear" || session.Evaluation.QuestionScores[session.Questions[0].ID] != 80 {
		t.Fatal("evaluation aliased")
	}
	if !session.EndedAt.Equal(ended) {
		t.Fatal("end time aliased")
	}
	var nilSession *interview.Session
	if nilSession.Clone() != nil {
		t.Fatal("expected nil clone of nil session")
	}
}

func TestElapsedUsesEndTimeWhenFinished(t *testing.T) {
	session := newSession(t)
	now := session.StartedAt.Add(90 * time.Second)
	if got := session.Elapsed(now); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
	ended := session.StartedAt.Add(30 * time.Second)
	session.EndedAt = &ended
	if got := session.Elapsed(now); got != 30*time.Second {
		t.Fatalf("expected 30s after end, got %v", got)
	}
	if got := session.Elapsed(session.StartedAt.Add(-time.Second)); got != 30*time.Second {
		t.Fatalf("unexpected elapsed %v", got)
	}
}

func TestFallbackQuestionsShape(t *testing.T) {
	questions := interview.FallbackQuestions()
	if len(questions) != 5 {
		t.Fatalf("expected 5 fallback questions, got %d", len(questions))
	}
	categories := map[interview.Category]bool{}
	seen := map[string]bool{}
	for _, q := range questions {
		if q.ExpectedDuration < 90 || q.ExpectedDuration > 150 {
			t.Fatalf("question %s expected duration %d outside 90-150", q.ID, q.ExpectedDuration)
		}
		if seen[q.ID] {
			t.Fatalf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = true
		categories[q.Category] = true
	}
	if len(categories) != 3 {
		t.Fatalf("expected all three categories, got %v", categories)
	}
	questions[0].Text = "mutated"
	if interview.FallbackQuestions()[0].Text == "mutated" {
		t.Fatal("fallback questions share backing storage")
	}
	if interview.TotalExpectedSeconds(questions) <= 0 {
		t.Fatal("expected positive total")
	}
}

func TestScriptsNameCandidateAndRole(t *testing.T) {
	greeting := interview.Greeting("  ada   lovelace ", "Backend Engineer", "Alex")
	if !strings.Contains(greeting, "Ada Lovelace") || !strings.Contains(greeting, "Backend Engineer") || !strings.Contains(greeting, "Alex") {
		t.Fatalf("unexpected greeting %q", greeting)
	}
	if got := interview.Greeting("", "", "Alex"); !strings.Contains(got, "Hello there") || !strings.Contains(got, "this position") {
		t.Fatalf("unexpected anonymous greeting %q", got)
	}
	closing := interview.Closing("grace", "SRE")
	if !strings.HasPrefix(closing, "Thank you, Grace.") || !strings.Contains(closing, "SRE") {
		t.Fatalf("unexpected closing %q", closing)
	}
	prompt := interview.QuestionPrompt(1, 5, interview.Question{Text: " Why us? "})
	if prompt != "Question 2 of 5. Why us?" {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if interview.TransitionRemark(0) == "" || interview.TransitionRemark(-3) != interview.TransitionRemark(0) {
		t.Fatal("unexpected transition remark")
	}
	if interview.WordCount("one two  three") != 3 {
		t.Fatal("unexpected word count")
	}
}
