package daemon_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"mockinterview/internal/api"
	"mockinterview/internal/config"
	"mockinterview/internal/daemon"
	"mockinterview/internal/metrics"
	"mockinterview/internal/sessions"
	"mockinterview/internal/sessionstore"
	"mockinterview/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	store *sessionstore.Store
	d     *daemon.Daemon
}

func newDaemon(t *testing.T, cfg *config.Config, store *sessionstore.Store, now func() time.Time) *daemon.Daemon {
	t.Helper()
	hub := api.NewHub(api.HubConfig{}, nil)
	registry, err := sessions.New(sessions.Options{Config: cfg, Store: store, Publisher: hub})
	if err != nil {
		t.Fatalf("sessions.New: %v", err)
	}
	d, err := daemon.New(cfg, daemon.Deps{
		Store:    store,
		Registry: registry,
		Hub:      hub,
		Metrics:  metrics.New(),
		Now:      now,
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)
	return d
}

func newFixture(t *testing.T, now func() time.Time, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	return &fixture{cfg: cfg, store: store, d: newDaemon(t, cfg, store, now)}
}

func TestDaemonStartStop(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status := f.d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.DatabasePath != f.cfg.DatabasePath() || status.LockFilePath != f.cfg.LockPath() {
		t.Fatalf("unexpected paths %+v", status)
	}

	if err := f.d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}
	other := newDaemon(t, f.cfg, f.store, nil)
	if err := other.Start(ctx); err == nil {
		t.Fatal("expected lock contention to block a second daemon")
	}

	f.d.Stop()
	if f.d.Status(ctx).Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonServesAPI(t *testing.T) {
	f := newFixture(t, nil, testsupport.WithAPIToken("tok"))
	ctx := context.Background()
	if err := f.d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	addr := f.d.APIAddress()
	if addr == "" {
		t.Fatal("expected a bound API address")
	}
	testsupport.MustCreateSession(t, f.store, "cand-1")

	req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/api/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var status api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.Sessions["inprogress"] != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestPruneExpiredHonoursRetention(t *testing.T) {
	later := func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, later)
		testsupport.MustCreateSession(t, f.store, "cand-1")
		n, err := f.d.PruneExpired(ctx)
		if err != nil || n != 0 {
			t.Fatalf("expected nothing pruned with retention off, got %d (%v)", n, err)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		f := newFixture(t, later)
		f.cfg.Sessions.RetentionDays = 7
		stale := testsupport.MustCreateSession(t, f.store, "cand-1")
		active := testsupport.MustCreateSession(t, f.store, "cand-2")
		if err := f.store.SetActiveSession(ctx, active); err != nil {
			t.Fatalf("SetActiveSession: %v", err)
		}

		n, err := f.d.PruneExpired(ctx)
		if err != nil {
			t.Fatalf("PruneExpired: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 pruned session, got %d", n)
		}
		if _, err := f.store.Get(ctx, stale.ID); err == nil {
			t.Fatal("expected stale session to be removed")
		}
		if _, err := f.store.Get(ctx, active.ID); err != nil {
			t.Fatalf("active session should survive: %v", err)
		}
	})
}

func TestTestNotificationWithoutTopic(t *testing.T) {
	f := newFixture(t, nil)
	sent, msg, err := f.d.TestNotification(context.Background())
	if err != nil || sent {
		t.Fatalf("expected skipped notification, got sent=%t err=%v", sent, err)
	}
	if msg != "ntfy topic not configured" {
		t.Fatalf("unexpected message %q", msg)
	}
}
