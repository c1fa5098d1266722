package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrDeviceUnavailable marks camera/microphone acquisition failures. The
	// interview continues without preview.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrPrecondition blocks starting a session (no user, no questions).
	ErrPrecondition = errors.New("precondition failed")
	// ErrMissingContext marks a job-tailored start whose job post or
	// application cannot be resolved.
	ErrMissingContext = errors.New("missing context")
	// ErrInvalidTransition rejects a command the current phase does not accept.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrSessionActive rejects a second concurrent session for one candidate.
	ErrSessionActive   = errors.New("session already active")
	ErrSessionClosed   = errors.New("session closed")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrExternalService = errors.New("external service error")
	ErrTransient       = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker so callers can classify it with errors.Is. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsBlocking reports whether err must be surfaced to the candidate as a
// blocking message rather than absorbed and logged.
func IsBlocking(err error) bool {
	return errors.Is(err, ErrPrecondition) || errors.Is(err, ErrMissingContext)
}

// HTTPStatus maps a marker-tagged error onto the status code the API returns.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrPrecondition), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingContext), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrSessionActive), errors.Is(err, ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, ErrDeviceUnavailable), errors.Is(err, ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
