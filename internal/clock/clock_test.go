package clock_test

import (
	"testing"
	"time"

	"mockinterview/internal/clock"
	"mockinterview/internal/schedule"
)

func TestSessionClockCountsWhileRunning(t *testing.T) {
	sched := schedule.NewManual(time.Unix(0, 0))
	var observed []int
	c := clock.New(sched, func(seconds int) { observed = append(observed, seconds) })

	sched.Advance(5 * time.Second)
	if c.Seconds() != 0 || c.Running() {
		t.Fatal("clock ticked before Start")
	}

	c.Start()
	c.Start()
	sched.Advance(3 * time.Second)
	if c.Seconds() != 3 {
		t.Fatalf("expected 3 seconds, got %d", c.Seconds())
	}
	if len(observed) != 3 || observed[2] != 3 {
		t.Fatalf("unexpected tick callbacks %v", observed)
	}

	c.Stop()
	c.Stop()
	sched.Advance(10 * time.Second)
	if c.Seconds() != 3 {
		t.Fatalf("expected clock to hold at 3, got %d", c.Seconds())
	}
	if sched.Pending() != 0 {
		t.Fatalf("expected ticker to be released, %d pending", sched.Pending())
	}

	c.Start()
	sched.Advance(time.Second)
	if c.Seconds() != 1 {
		t.Fatalf("expected restart to reset the counter, got %d", c.Seconds())
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := map[int]string{
		-4:   "00:00",
		0:    "00:00",
		9:    "00:09",
		61:   "01:01",
		3599: "59:59",
		3600: "60:00",
		7265: "121:05",
	}
	for in, want := range cases {
		if got := clock.FormatElapsed(in); got != want {
			t.Fatalf("FormatElapsed(%d) = %q, want %q", in, got, want)
		}
	}
}
