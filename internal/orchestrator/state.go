package orchestrator

import (
	"context"
	"strconv"
	"time"

	"mockinterview/internal/capture"
	"mockinterview/internal/interview"
	"mockinterview/internal/narration"
)

// Phase is the orchestrator's position in the interview flow.
type Phase string

const (
	PhaseNotStarted       Phase = "not_started"
	PhasePreviewing       Phase = "previewing"
	PhaseNarrating        Phase = "narrating"
	PhaseAwaitingResponse Phase = "awaiting_response"
	PhaseRecording        Phase = "recording"
	PhaseCompleted        Phase = "completed"
	PhaseExited           Phase = "exited"
)

// State is the tagged phase value. Index is meaningful from Previewing on;
// NarrationKind only while Narrating.
type State struct {
	Phase         Phase          `json:"phase"`
	Index         int            `json:"index"`
	NarrationKind narration.Kind `json:"narrationKind,omitempty"`
}

func (s State) String() string {
	switch s.Phase {
	case PhaseNarrating:
		return string(s.Phase) + "(" + string(s.NarrationKind) + ")"
	case PhaseAwaitingResponse, PhaseRecording:
		return string(s.Phase) + "(" + strconv.Itoa(s.Index) + ")"
	default:
		return string(s.Phase)
	}
}

// Terminal reports whether no further commands are accepted.
func (s State) Terminal() bool {
	return s.Phase == PhaseCompleted || s.Phase == PhaseExited
}

// View names a host screen.
type View string

const (
	ViewResults   View = "results"
	ViewDashboard View = "dashboard"
)

// Host receives navigation requests and UI events. Calls are made from the
// orchestrator's event loop and must not block.
type Host interface {
	NavigateTo(view View, sessionID string)
	Publish(event Event)
}

// EventType labels a published Event.
type EventType string

const (
	EventSessionStarted    EventType = "session_started"
	EventPhaseChanged      EventType = "phase_changed"
	EventPreviewReady      EventType = "preview_ready"
	EventDeviceUnavailable EventType = "device_unavailable"
	EventNarrationStarted  EventType = "narration_started"
	EventNarrationEnded    EventType = "narration_ended"
	EventRecordingStarted  EventType = "recording_started"
	EventResponseRecorded  EventType = "response_recorded"
	EventTick              EventType = "tick"
	EventSessionCompleted  EventType = "session_completed"
	EventNavigate          EventType = "navigate"
	EventSessionExited     EventType = "session_exited"
	EventError             EventType = "error"
)

// Event is a UI-facing notification.
type Event struct {
	Type       EventType             `json:"type"`
	SessionID  string                `json:"sessionId"`
	UserID     string                `json:"userId,omitempty"`
	State      State                 `json:"state"`
	Text       string                `json:"text,omitempty"`
	Seconds    int                   `json:"seconds,omitempty"`
	Elapsed    string                `json:"elapsed,omitempty"`
	View       View                  `json:"view,omitempty"`
	Error      string                `json:"error,omitempty"`
	Canceled   bool                  `json:"canceled,omitempty"`
	Evaluation *interview.Evaluation `json:"evaluation,omitempty"`
	At         time.Time             `json:"at"`
}

// Snapshot is a point-in-time copy of the orchestrator's state.
type Snapshot struct {
	State
	SessionID        string              `json:"sessionId,omitempty"`
	Total            int                 `json:"total"`
	Speaking         bool                `json:"speaking"`
	Recording        bool                `json:"recording"`
	Notes            string              `json:"notes,omitempty"`
	Elapsed          int                 `json:"elapsedSeconds"`
	ElapsedText      string              `json:"elapsed"`
	PreviewAvailable bool                `json:"previewAvailable"`
	Preview          *capture.Preview    `json:"preview,omitempty"`
	DeviceError      string              `json:"deviceError,omitempty"`
	Question         *interview.Question `json:"question,omitempty"`
	Session          *interview.Session  `json:"session,omitempty"`
	Closed           bool                `json:"closed"`
}

// Store is the persistence surface the orchestrator writes through. Every
// call carries a complete session value.
type Store interface {
	CreateSession(ctx context.Context, session *interview.Session) error
	ReplaceSession(ctx context.Context, session *interview.Session) error
	SetActiveSession(ctx context.Context, session *interview.Session) error
}

// Metrics observes session outcomes. All methods must be safe to call from
// any goroutine.
type Metrics interface {
	SessionStarted(tailored bool)
	ResponseRecorded(seconds int)
	SessionCompleted(overall int, elapsed time.Duration)
	SessionExited(phase Phase)
	DeviceUnavailable()
	NarrationEnded(kind narration.Kind, canceled bool)
}

type noopMetrics struct{}

func (noopMetrics) SessionStarted(bool)                 {}
func (noopMetrics) ResponseRecorded(int)                {}
func (noopMetrics) SessionCompleted(int, time.Duration) {}
func (noopMetrics) SessionExited(Phase)                 {}
func (noopMetrics) DeviceUnavailable()                  {}
func (noopMetrics) NarrationEnded(narration.Kind, bool) {}

type noopHost struct{}

func (noopHost) NavigateTo(View, string) {}
func (noopHost) Publish(Event)           {}
