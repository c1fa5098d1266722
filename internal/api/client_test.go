package api_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockinterview/internal/api"
	"mockinterview/internal/interview"
)

func TestClientRoundTrip(t *testing.T) {
	e := newEnv(t, "secret")
	srv := httptest.NewServer(e.handler)
	defer srv.Close()

	client := api.NewClient(srv.Listener.Addr().String(), "secret")
	ctx := context.Background()

	started, err := client.StartSession(ctx, api.StartSessionRequest{UserID: "cand-9", CandidateName: "ada"})
	require.NoError(t, err)
	require.NotNil(t, started.Session)
	assert.Equal(t, interview.StatusInProgress, started.Session.Status)

	got, err := client.GetSession(ctx, started.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "cand-9", got.Session.UserID)

	list, err := client.ListSessions(ctx, "cand-9", []string{"inprogress"}, 5)
	require.NoError(t, err)
	require.Len(t, list.Sessions, 1)
	require.Len(t, list.Running, 1)

	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, 1, status.ActiveSessions)

	notify, err := client.TestNotification(ctx)
	require.NoError(t, err)
	assert.False(t, notify.Sent)
	assert.Equal(t, "notifications unavailable", notify.Message)
}

func TestClientReportsStatusErrors(t *testing.T) {
	e := newEnv(t, "secret")
	srv := httptest.NewServer(e.handler)
	defer srv.Close()

	_, err := api.NewClient(srv.URL, "wrong").Status(context.Background())
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)

	_, err = api.NewClient(srv.URL, "secret").GetSession(context.Background(), "missing")
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.NotEmpty(t, statusErr.Message)
}

func TestClientDetectsMissingDaemon(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = api.NewClient(addr, "").Status(context.Background())
	assert.True(t, errors.Is(err, api.ErrDaemonUnavailable), "got %v", err)
}

func TestServerSendsTestNotification(t *testing.T) {
	e := newEnv(t, "")
	server, err := api.NewServer(api.Options{
		Registry: e.registry,
		Store:    e.store,
		TestNotify: func(context.Context) (bool, string, error) {
			return true, "test notification sent", nil
		},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	resp, err := api.NewClient(srv.URL, "").TestNotification(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Sent)
	assert.Equal(t, "test notification sent", resp.Message)
}
