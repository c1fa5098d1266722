package sessionstore

import (
	"fmt"
	"time"

	"mockinterview/internal/interview"
	"mockinterview/internal/services"
)

// ChangeKind labels a store write.
type ChangeKind string

const (
	ChangeCreated   ChangeKind = "created"
	ChangeReplaced  ChangeKind = "replaced"
	ChangeActivated ChangeKind = "activated"
	ChangeCleared   ChangeKind = "cleared"
	ChangeDeleted   ChangeKind = "deleted"
	ChangePruned    ChangeKind = "pruned"
)

// Change is delivered to subscribers after a successful write. Session is a
// private copy; it is nil for pruning.
type Change struct {
	Kind    ChangeKind
	Session *interview.Session
	UserID  string
	Count   int64
}

// Filter narrows List results.
type Filter struct {
	UserID   string
	Statuses []interview.Status
	Limit    int
}

// Stats counts sessions per status.
type Stats map[interview.Status]int

// Total sums every status.
func (s Stats) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// checkReplacement enforces the whole-object update rules.
func checkReplacement(current, next *interview.Session) error {
	if current.UserID != next.UserID {
		return services.Wrap(services.ErrValidation, "sessionstore", "replace", "owner cannot change", nil)
	}
	if current.Status == interview.StatusCompleted {
		return services.Wrap(services.ErrInvalidTransition, "sessionstore", "replace", "session "+current.ID+" is already completed", nil)
	}
	if len(current.Questions) != len(next.Questions) {
		return services.Wrap(services.ErrValidation, "sessionstore", "replace", "questions are fixed once a session starts", nil)
	}
	for i := range current.Questions {
		if current.Questions[i].ID != next.Questions[i].ID {
			return services.Wrap(services.ErrValidation, "sessionstore", "replace", "questions are fixed once a session starts", nil)
		}
	}
	if len(next.Responses) < len(current.Responses) {
		return services.Wrap(services.ErrValidation, "sessionstore", "replace", "responses cannot be removed", nil)
	}
	for i, prev := range current.Responses {
		got := next.Responses[i]
		if got.QuestionID != prev.QuestionID || got.Notes != prev.Notes || got.DurationSeconds != prev.DurationSeconds || !got.RecordedAt.Equal(prev.RecordedAt) {
			return services.Wrap(services.ErrValidation, "sessionstore", "replace", fmt.Sprintf("response %d cannot be modified", i), nil)
		}
	}
	return nil
}

func validate(op string, s *interview.Session) error {
	if err := s.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "sessionstore", op, "", err)
	}
	return nil
}

func stamp(s *interview.Session, now time.Time) {
	s.UpdatedAt = now.UTC()
}

type subscribers struct {
	next int
	fns  map[int]func(Change)
}

func (s *subscribers) add(fn func(Change)) int {
	if s.fns == nil {
		s.fns = make(map[int]func(Change))
	}
	s.next++
	s.fns[s.next] = fn
	return s.next
}

func (s *subscribers) list() []func(Change) {
	out := make([]func(Change), 0, len(s.fns))
	for i := 1; i <= s.next; i++ {
		if fn, ok := s.fns[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}
