package api

import (
	"time"

	"mockinterview/internal/capture"
	"mockinterview/internal/deps"
	"mockinterview/internal/interview"
	"mockinterview/internal/orchestrator"
	"mockinterview/internal/sessions"
)

// StartSessionRequest opens an interview. Supplying both JobPostID and
// ApplicationID selects a job-tailored interview.
type StartSessionRequest struct {
	UserID        string `json:"userId"`
	CandidateName string `json:"candidateName,omitempty"`
	Role          string `json:"role,omitempty"`
	JobPostID     string `json:"jobPostId,omitempty"`
	ApplicationID string `json:"applicationId,omitempty"`
}

// Tailored reports whether the request names a job post or application.
func (r StartSessionRequest) Tailored() bool {
	return r.JobPostID != "" || r.ApplicationID != ""
}

// NotesRequest replaces the notes of the response being recorded.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// SessionResponse wraps a stored session.
type SessionResponse struct {
	Session *interview.Session `json:"session"`
}

// StartSessionResponse is returned when a session starts.
type StartSessionResponse struct {
	Session  *interview.Session    `json:"session"`
	Snapshot orchestrator.Snapshot `json:"snapshot"`
}

// SnapshotResponse wraps a running session's state.
type SnapshotResponse struct {
	Snapshot orchestrator.Snapshot `json:"snapshot"`
}

// SessionListResponse lists stored sessions plus the ones currently running.
type SessionListResponse struct {
	Sessions []*interview.Session `json:"sessions"`
	Running  []sessions.Summary   `json:"running"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running        bool               `json:"running"`
	PID            int                `json:"pid"`
	StartedAt      time.Time          `json:"startedAt"`
	DatabasePath   string             `json:"databasePath"`
	LockFilePath   string             `json:"lockFilePath"`
	CaptureBackend string             `json:"captureBackend"`
	Synthesizer    string             `json:"synthesizer"`
	Scorer         string             `json:"scorer"`
	ActiveSessions int                `json:"activeSessions"`
	Subscribers    int                `json:"subscribers"`
	Sessions       map[string]int     `json:"sessions"`
	Live           []sessions.Summary `json:"live"`
	// LastDeviceEvent is the most recent capture hotplug change.
	LastDeviceEvent *capture.DeviceEvent `json:"lastDeviceEvent,omitempty"`
	Dependencies    []deps.Status        `json:"dependencies,omitempty"`
}

// NotificationResponse reports the outcome of a test notification.
type NotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Message is one WebSocket frame.
type Message struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}
