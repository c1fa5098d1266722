package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mockinterview/internal/config"
	"mockinterview/internal/services"
)

const userAgent = "MockInterview-Go/0.1.0"

// Event identifies a notification kind.
type Event string

const (
	EventSessionStarted    Event = "session_started"
	EventSessionCompleted  Event = "session_completed"
	EventDeviceUnavailable Event = "device_unavailable"
	EventError             Event = "error"
	EventTest              Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service publishes notification events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventSessionStarted:    cfg.Notifications.SessionStarted,
			EventSessionCompleted:  cfg.Notifications.SessionCompleted,
			EventDeviceUnavailable: cfg.Notifications.DeviceUnavailable,
			EventError:             cfg.Notifications.Errors,
			EventTest:              true,
		},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	if n == nil || !n.enabled[event] {
		return nil
	}
	p, ok := format(event, data)
	if !ok {
		return nil
	}
	return n.send(ctx, p)
}

func format(event Event, data Payload) (payload, bool) {
	candidate := displayCandidate(data)
	switch event {
	case EventSessionStarted:
		return payload{
			title:   "Mock Interview - Started",
			message: fmt.Sprintf("🎙️ %s started an interview for %s (%d questions)", candidate, roleText(data), intValue(data, "questions")),
			tags:    []string{"mockinterview", "session", "started"},
		}, true
	case EventSessionCompleted:
		message := fmt.Sprintf("✅ %s completed the interview for %s", candidate, roleText(data))
		if score := intValue(data, "overall"); score > 0 {
			message = fmt.Sprintf("%s\nOverall score: %d", message, score)
		}
		if elapsed := stringValue(data, "elapsed"); elapsed != "" {
			message = fmt.Sprintf("%s\nDuration: %s", message, elapsed)
		}
		return payload{
			title:   "Mock Interview - Completed",
			message: message,
			tags:    []string{"mockinterview", "session", "completed"},
		}, true
	case EventDeviceUnavailable:
		return payload{
			title:   "Mock Interview - Camera Unavailable",
			message: fmt.Sprintf("📷 %s is interviewing without camera preview: %s", candidate, fallback(stringValue(data, "error"), "device unavailable")),
			tags:    []string{"mockinterview", "capture", "warning"},
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if label := stringValue(data, "context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		builder.WriteString(fallback(stringValue(data, "error"), "unknown"))
		return payload{
			title:    "Mock Interview - Error",
			message:  builder.String(),
			tags:     []string{"mockinterview", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:    "Mock Interview - Test",
			message:  "🧪 Notification system test",
			tags:     []string{"mockinterview", "test"},
			priority: "low",
		}, true
	default:
		return payload{}, false
	}
}

func displayCandidate(data Payload) string {
	if name := stringValue(data, "candidate"); name != "" {
		return name
	}
	if user := stringValue(data, "userId"); user != "" {
		return "Candidate " + user
	}
	return "A candidate"
}

func roleText(data Payload) string {
	return fallback(stringValue(data, "role"), "an open role")
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func stringValue(data Payload, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case error:
		return strings.TrimSpace(typed.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

func intValue(data Payload, key string) int {
	switch typed := data[key].(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	default:
		return 0
	}
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalService, "notifications", "send", "ntfy request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrExternalService, "notifications", "send",
			fmt.Sprintf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
