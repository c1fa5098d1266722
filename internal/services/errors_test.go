package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"mockinterview/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("permission denied")
	err := services.Wrap(services.ErrDeviceUnavailable, "capture", "acquire", "open /dev/video0", base)
	if !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	for _, fragment := range []string{"capture", "acquire", "open /dev/video0"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in error string %q", fragment, err.Error())
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHTTPStatusAndBlocking(t *testing.T) {
	tests := []struct {
		marker   error
		status   int
		blocking bool
	}{
		{services.ErrPrecondition, http.StatusBadRequest, true},
		{services.ErrMissingContext, http.StatusNotFound, true},
		{services.ErrNotFound, http.StatusNotFound, false},
		{services.ErrInvalidTransition, http.StatusConflict, false},
		{services.ErrSessionActive, http.StatusConflict, false},
		{services.ErrDeviceUnavailable, http.StatusBadGateway, false},
		{errors.New("boom"), http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		err := services.Wrap(tt.marker, "orchestrator", "start", "", nil)
		if tt.marker.Error() == "boom" {
			err = tt.marker
		}
		if got := services.HTTPStatus(err); got != tt.status {
			t.Fatalf("%v: expected status %d, got %d", tt.marker, tt.status, got)
		}
		if got := services.IsBlocking(err); got != tt.blocking {
			t.Fatalf("%v: expected blocking=%v, got %v", tt.marker, tt.blocking, got)
		}
	}
}
