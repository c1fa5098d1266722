package main

import (
	"context"
	"errors"

	"mockinterview/internal/api"
	"mockinterview/internal/interview"
	"mockinterview/internal/services"
	"mockinterview/internal/sessionstore"
)

// sessionsAPI reads stored sessions from the daemon or, when it is not
// running, straight from the database.
type sessionsAPI interface {
	List(ctx context.Context, filter sessionstore.Filter) ([]*interview.Session, error)
	Describe(ctx context.Context, id string) (*interview.Session, error)
}

// --- daemon adapter ---

type sessionsDaemonAdapter struct {
	client *api.Client
}

func (a *sessionsDaemonAdapter) List(ctx context.Context, filter sessionstore.Filter) ([]*interview.Session, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}
	resp, err := a.client.ListSessions(ctx, filter.UserID, statuses, filter.Limit)
	if err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (a *sessionsDaemonAdapter) Describe(ctx context.Context, id string) (*interview.Session, error) {
	resp, err := a.client.GetSession(ctx, id)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == 404 {
			return nil, nil
		}
		return nil, err
	}
	return resp.Session, nil
}

// --- store adapter ---

type sessionsStoreAdapter struct {
	store sessionstore.Repository
}

func (a *sessionsStoreAdapter) List(ctx context.Context, filter sessionstore.Filter) ([]*interview.Session, error) {
	return a.store.List(ctx, filter)
}

func (a *sessionsStoreAdapter) Describe(ctx context.Context, id string) (*interview.Session, error) {
	session, err := a.store.Get(ctx, id)
	if errors.Is(err, services.ErrNotFound) {
		return nil, nil
	}
	return session, err
}

// withSessionsAPI prefers the daemon and falls back to the database when
// nothing is listening.
func (c *commandContext) withSessionsAPI(ctx context.Context, fn func(sessionsAPI) error) error {
	client := c.client()
	if _, err := client.Status(ctx); err == nil {
		return fn(&sessionsDaemonAdapter{client: client})
	} else if !errors.Is(err, api.ErrDaemonUnavailable) {
		return wrapDaemonError(err, c.apiAddress())
	}
	return c.withStore(func(store *sessionstore.Store) error {
		return fn(&sessionsStoreAdapter{store: store})
	})
}
