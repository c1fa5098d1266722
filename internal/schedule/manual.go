package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a virtual-time scheduler. Callbacks only fire from Advance, on the
// calling goroutine, in due-time order.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	entries []*manualTimer
}

type manualTimer struct {
	owner  *Manual
	id     uint64
	due    time.Time
	period time.Duration
	fn     func()
	done   bool
}

// NewManual returns a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc registers fn to run once the virtual clock passes d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

// Every registers fn to run at each multiple of interval.
func (m *Manual) Every(interval time.Duration, fn func()) Timer {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return m.add(interval, interval, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{owner: m, id: m.seq, due: m.now.Add(d), period: period, fn: fn}
	m.entries = append(m.entries, t)
	return t
}

// Pending reports how many timers are still scheduled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.entries {
		if !t.done {
			count++
		}
	}
	return count
}

// Advance moves the virtual clock forward by d, firing every callback that
// becomes due. Callbacks scheduled by a firing callback run in the same
// Advance call when they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.compactLocked()
			m.mu.Unlock()
			return
		}
		m.now = next.due
		if next.period > 0 {
			next.due = next.due.Add(next.period)
		} else {
			next.done = true
		}
		fn := next.fn
		m.mu.Unlock()
		fn()
	}
}

func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	candidates := make([]*manualTimer, 0, len(m.entries))
	for _, t := range m.entries {
		if !t.done && !t.due.After(target) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].due.Equal(candidates[j].due) {
			return candidates[i].id < candidates[j].id
		}
		return candidates[i].due.Before(candidates[j].due)
	})
	return candidates[0]
}

func (m *Manual) compactLocked() {
	kept := m.entries[:0]
	for _, t := range m.entries {
		if !t.done {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(m.entries); i++ {
		m.entries[i] = nil
	}
	m.entries = kept
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
