package sessionstore

import (
	"context"
	"time"

	"mockinterview/internal/interview"
)

// Repository is the full store surface shared by Store and Memory.
type Repository interface {
	CreateSession(ctx context.Context, session *interview.Session) error
	ReplaceSession(ctx context.Context, session *interview.Session) error
	SetActiveSession(ctx context.Context, session *interview.Session) error
	ClearActiveSession(ctx context.Context, userID, sessionID string) error
	ActiveSession(ctx context.Context, userID string) (*interview.Session, error)
	Get(ctx context.Context, id string) (*interview.Session, error)
	List(ctx context.Context, filter Filter) ([]*interview.Session, error)
	DeleteSession(ctx context.Context, id string) error
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
	Stats(ctx context.Context) (Stats, error)
	Subscribe(fn func(Change)) func()
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*Memory)(nil)
)
