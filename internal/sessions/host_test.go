package sessions

import (
	"context"
	"sync"
	"testing"

	"mockinterview/internal/config"
	"mockinterview/internal/interview"
	"mockinterview/internal/notifications"
	"mockinterview/internal/orchestrator"
	"mockinterview/internal/sessionstore"
)

type captured struct {
	mu       sync.Mutex
	events   []notifications.Event
	payloads []notifications.Payload
}

func (c *captured) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	c.payloads = append(c.payloads, payload)
	return nil
}

func TestHostMapsEventsToNotifications(t *testing.T) {
	cfg := config.Default()
	sink := &captured{}
	r, err := New(Options{Config: &cfg, Store: sessionstore.NewMemory(), Notifier: sink})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	h := &host{registry: r, entry: &entry{userID: "cand-1", candidate: "Ada", role: "SRE", questions: 3}}

	h.Publish(orchestrator.Event{Type: orchestrator.EventSessionCompleted, UserID: "cand-1", Seconds: 125,
		Evaluation: &interview.Evaluation{Overall: 82}})
	h.Publish(orchestrator.Event{Type: orchestrator.EventDeviceUnavailable, UserID: "cand-1", Error: "permission denied"})
	h.Publish(orchestrator.Event{Type: orchestrator.EventError, SessionID: "s-1", Error: "disk full"})
	h.Publish(orchestrator.Event{Type: orchestrator.EventTick, Seconds: 1})
	r.pending.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 3 {
		t.Fatalf("expected 3 notifications, got %v", sink.events)
	}
	byEvent := make(map[notifications.Event]notifications.Payload)
	for i, e := range sink.events {
		byEvent[e] = sink.payloads[i]
	}
	done := byEvent[notifications.EventSessionCompleted]
	if done["overall"] != 82 || done["elapsed"] != "02:05" || done["candidate"] != "Ada" {
		t.Fatalf("unexpected completion payload %#v", done)
	}
	if byEvent[notifications.EventDeviceUnavailable]["error"] != "permission denied" {
		t.Fatalf("unexpected device payload %#v", byEvent[notifications.EventDeviceUnavailable])
	}
	if byEvent[notifications.EventError]["context"] != "session s-1" {
		t.Fatalf("unexpected error payload %#v", byEvent[notifications.EventError])
	}
}
