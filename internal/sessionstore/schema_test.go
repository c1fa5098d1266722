package sessionstore_test

import (
	"errors"
	"testing"

	"mockinterview/internal/sessionstore"
	"mockinterview/internal/testsupport"
)

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if err := store.Ping(t.Context()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := sessionstore.OpenPath(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	reopened.Close()

	if err := sessionstore.SetSchemaVersionForTest(cfg.DatabasePath(), 99); err != nil {
		t.Fatalf("set version: %v", err)
	}
	if _, err := sessionstore.OpenPath(cfg.DatabasePath()); !errors.Is(err, sessionstore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
