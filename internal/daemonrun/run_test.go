package daemonrun

import (
	"context"
	"os"
	"testing"
	"time"

	"mockinterview/internal/logging"
	"mockinterview/internal/testsupport"
)

func TestBuildWiresDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	d, err := Build(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer d.Close()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if d.APIAddress() == "" {
		t.Fatal("expected api address after start")
	}
	status := d.Status(context.Background())
	if !status.Running || status.DatabasePath != cfg.DatabasePath() {
		t.Fatalf("unexpected status: %#v", status)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, Options{LogLevel: "error"}) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if pid, ok := ReadPID(cfg); ok {
			if pid != os.Getpid() {
				t.Fatalf("pid file holds %d, want %d", pid, os.Getpid())
			}
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("pid file never written")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, ok := ReadPID(cfg); ok {
		t.Fatal("expected pid file to be removed")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error without config")
	}
}
