package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"mockinterview/internal/config"
	"mockinterview/internal/interview"
	"mockinterview/internal/sessionstore"
)

// MustOpenStore opens a sessionstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sessionstore.Store {
	t.Helper()

	store, err := sessionstore.Open(cfg)
	if err != nil {
		t.Fatalf("sessionstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewSession builds an in-progress session over the fallback questions.
func NewSession(userID string) *interview.Session {
	return &interview.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartedAt: time.Now().UTC(),
		Status:    interview.StatusInProgress,
		Questions: interview.FallbackQuestions(),
	}
}

// MustCreateSession stores a new in-progress session for userID.
func MustCreateSession(t testing.TB, store interface {
	CreateSession(context.Context, *interview.Session) error
}, userID string) *interview.Session {
	t.Helper()

	session := NewSession(userID)
	if err := store.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session
}
