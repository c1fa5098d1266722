package services_test

import (
	"context"
	"testing"

	"mockinterview/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "sess-1" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	if got := services.WithSessionID(ctx, ""); got != ctx {
		t.Fatal("expected blank session id to return the same context")
	}
	if _, ok := services.RequestIDFromContext(services.WithRequestID(ctx, "")); ok {
		t.Fatal("expected blank request id to be absent")
	}
}
