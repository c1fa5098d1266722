package schedule_test

import (
	"sync/atomic"
	"testing"
	"time"

	"mockinterview/internal/schedule"
)

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func TestManualFiresInDueOrder(t *testing.T) {
	m := schedule.NewManual(epoch)
	var order []string
	m.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	m.AfterFunc(time.Second, func() { order = append(order, "a") })
	m.AfterFunc(time.Second, func() { order = append(order, "b") })

	m.Advance(500 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("expected nothing to fire yet, got %v", order)
	}
	m.Advance(3 * time.Second)
	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected order %v", order)
	}
	if !m.Now().Equal(epoch.Add(3500 * time.Millisecond)) {
		t.Fatalf("unexpected virtual time %v", m.Now())
	}
	if m.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", m.Pending())
	}
}

func TestManualStopPreventsFire(t *testing.T) {
	m := schedule.NewManual(epoch)
	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("expected first Stop to report pending")
	}
	if timer.Stop() {
		t.Fatal("expected second Stop to report not pending")
	}
	m.Advance(time.Minute)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestManualChainedCallbacksFireWithinWindow(t *testing.T) {
	m := schedule.NewManual(epoch)
	var at []time.Duration
	m.AfterFunc(time.Second, func() {
		at = append(at, m.Now().Sub(epoch))
		m.AfterFunc(2*time.Second, func() { at = append(at, m.Now().Sub(epoch)) })
	})
	m.Advance(5 * time.Second)
	if len(at) != 2 || at[0] != time.Second || at[1] != 3*time.Second {
		t.Fatalf("unexpected fire times %v", at)
	}
}

func TestManualEveryRepeatsUntilStopped(t *testing.T) {
	m := schedule.NewManual(epoch)
	ticks := 0
	timer := m.Every(time.Second, func() { ticks++ })
	m.Advance(3500 * time.Millisecond)
	if ticks != 3 {
		t.Fatalf("expected 3 ticks, got %d", ticks)
	}
	timer.Stop()
	m.Advance(10 * time.Second)
	if ticks != 3 {
		t.Fatalf("expected ticks to stop at 3, got %d", ticks)
	}
}

func TestRealSchedulerRuns(t *testing.T) {
	s := schedule.NewReal()
	done := make(chan struct{})
	s.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AfterFunc did not fire")
	}

	var ticks atomic.Int32
	timer := s.Every(5*time.Millisecond, func() { ticks.Add(1) })
	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !timer.Stop() {
		t.Fatal("expected ticker to stop once")
	}
	if timer.Stop() {
		t.Fatal("expected repeated stop to be a no-op")
	}
	if ticks.Load() < 2 {
		t.Fatalf("expected at least 2 ticks, got %d", ticks.Load())
	}
}
