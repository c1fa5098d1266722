package schedule

import (
	"sync"
	"time"
)

// Timer is a handle to a pending callback.
type Timer interface {
	// Stop prevents the callback from firing again. It reports whether the
	// timer was still pending.
	Stop() bool
}

// Scheduler creates one-shot and periodic callbacks.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
	Every(interval time.Duration, fn func()) Timer
}

// Real schedules callbacks on the wall clock.
type Real struct{}

// NewReal returns the wall-clock scheduler.
func NewReal() Real { return Real{} }

// Now returns the current time.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc runs fn in its own goroutine after d.
func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Every runs fn once per interval until the returned timer is stopped.
func (Real) Every(interval time.Duration, fn func()) Timer {
	t := &ticker{stop: make(chan struct{})}
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				fn()
			}
		}
	}()
	return t
}

type ticker struct {
	once sync.Once
	stop chan struct{}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		close(t.stop)
		stopped = true
	})
	return stopped
}
