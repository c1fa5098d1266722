package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"mockinterview/internal/config"
	"mockinterview/internal/notifications"
	"mockinterview/internal/services"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventSessionCompleted, notifications.Payload{"candidate": "Ada"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "session started",
			event: notifications.EventSessionStarted,
			payload: notifications.Payload{
				"candidate": "Ada Lovelace",
				"role":      "Backend Engineer",
				"questions": 5,
			},
			expectTitle:   "Mock Interview - Started",
			expectMessage: "🎙️ Ada Lovelace started an interview for Backend Engineer (5 questions)",
			expectTags:    "mockinterview,session,started",
		},
		{
			name:  "session completed",
			event: notifications.EventSessionCompleted,
			payload: notifications.Payload{
				"candidate": "Ada Lovelace",
				"role":      "Backend Engineer",
				"overall":   87,
				"elapsed":   "12:04",
			},
			expectTitle:   "Mock Interview - Completed",
			expectMessage: "✅ Ada Lovelace completed the interview for Backend Engineer\nOverall score: 87\nDuration: 12:04",
			expectTags:    "mockinterview,session,completed",
		},
		{
			name:  "completed without name",
			event: notifications.EventSessionCompleted,
			payload: notifications.Payload{
				"userId": "u-42",
			},
			expectTitle:   "Mock Interview - Completed",
			expectMessage: "✅ Candidate u-42 completed the interview for an open role",
			expectTags:    "mockinterview,session,completed",
		},
		{
			name:  "device unavailable",
			event: notifications.EventDeviceUnavailable,
			payload: notifications.Payload{
				"candidate": "Grace",
				"error":     errors.New("permission denied"),
			},
			expectTitle:   "Mock Interview - Camera Unavailable",
			expectMessage: "📷 Grace is interviewing without camera preview: permission denied",
			expectTags:    "mockinterview,capture,warning",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"context": "scoring",
				"error":   "model offline",
			},
			expectTitle:    "Mock Interview - Error",
			expectMessage:  "❌ Error with scoring: model offline",
			expectTags:     "mockinterview,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "Mock Interview - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "mockinterview,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.SessionStarted = true

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresSuppressedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.SessionStarted = false
	cfg.Notifications.Errors = false
	cfg.Notifications.DeviceUnavailable = false

	svc := notifications.NewService(&cfg)
	suppressed := []notifications.Event{
		notifications.EventSessionStarted,
		notifications.EventDeviceUnavailable,
		notifications.EventError,
		notifications.Event("unknown"),
	}

	for _, event := range suppressed {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"value": "ignored"}); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic locked", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}
