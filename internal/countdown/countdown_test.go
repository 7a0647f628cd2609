package countdown

import (
	"regexp"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

// ============================================================
// Lifecycle
// ============================================================

func TestNewIsIdle(t *testing.T) {
	tm := New(newFakeClock())
	if tm.Remaining() != TotalSeconds {
		t.Fatalf("expected %d remaining, got %d", TotalSeconds, tm.Remaining())
	}
	if tm.Running() {
		t.Fatal("new timer should not be running")
	}
	if _, ok := tm.Deadline(); ok {
		t.Fatal("new timer should have no deadline")
	}
	if tm.State() != Idle {
		t.Fatalf("expected Idle, got %v", tm.State())
	}
}

func TestNewNilClockUsesSystem(t *testing.T) {
	tm := New(nil)
	if !tm.Start() {
		t.Fatal("start should succeed")
	}
	d, _ := tm.Deadline()
	if until := time.Until(d); until < TotalDuration-time.Second || until > TotalDuration {
		t.Fatalf("deadline off: %v", until)
	}
}

func TestStartSetsDeadline(t *testing.T) {
	c := newFakeClock()
	tm := New(c)

	if !tm.Start() {
		t.Fatal("start from idle should transition")
	}
	d, ok := tm.Deadline()
	if !ok {
		t.Fatal("deadline should be set while running")
	}
	if want := c.now.Add(TotalDuration); !d.Equal(want) {
		t.Fatalf("deadline = %v, want %v", d, want)
	}
	if tm.State() != Running {
		t.Fatalf("expected Running, got %v", tm.State())
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	tm.Start()
	before, _ := tm.Deadline()
	gen := tm.Generation()

	c.advance(3 * time.Second)
	if tm.Start() {
		t.Fatal("second start should be a no-op")
	}
	after, _ := tm.Deadline()
	if !after.Equal(before) {
		t.Fatalf("deadline moved from %v to %v", before, after)
	}
	if tm.Generation() != gen {
		t.Fatal("generation should not change on no-op start")
	}
}

func TestPauseWhenNotRunning(t *testing.T) {
	tm := New(newFakeClock())
	gen := tm.Generation()
	if tm.Pause() {
		t.Fatal("pause on idle timer should be a no-op")
	}
	if tm.Generation() != gen {
		t.Fatal("generation should not change on no-op pause")
	}
}

func TestPauseKeepsRemaining(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	tm.Start()

	c.advance(10 * time.Second)
	tm.Recompute()
	if !tm.Pause() {
		t.Fatal("pause should transition")
	}
	if tm.Running() {
		t.Fatal("should not be running")
	}
	if _, ok := tm.Deadline(); ok {
		t.Fatal("deadline should be cleared")
	}
	if tm.Remaining() != TotalSeconds-10 {
		t.Fatalf("expected %d remaining, got %d", TotalSeconds-10, tm.Remaining())
	}
	if tm.State() != Paused {
		t.Fatalf("expected Paused, got %v", tm.State())
	}

	// Time passing while paused is not counted.
	c.advance(time.Hour)
	tm.Recompute()
	if tm.Remaining() != TotalSeconds-10 {
		t.Fatalf("remaining changed while paused: %d", tm.Remaining())
	}
}

func TestResumeFromPaused(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	tm.Start()
	c.advance(100 * time.Second)
	tm.Recompute()
	tm.Pause()

	c.advance(30 * time.Second)
	tm.Start()
	d, _ := tm.Deadline()
	if want := c.now.Add(time.Duration(TotalSeconds-100) * time.Second); !d.Equal(want) {
		t.Fatalf("resume deadline = %v, want %v", d, want)
	}

	c.advance(5 * time.Second)
	tm.Recompute()
	if tm.Remaining() != TotalSeconds-105 {
		t.Fatalf("expected %d remaining, got %d", TotalSeconds-105, tm.Remaining())
	}
}

func TestToggle(t *testing.T) {
	tm := New(newFakeClock())

	tm.Toggle() // idle -> running
	if !tm.Running() {
		t.Fatal("toggle should start")
	}
	tm.Toggle() // running -> paused
	if tm.Running() {
		t.Fatal("toggle should pause")
	}
}

func TestResetFromEveryState(t *testing.T) {
	c := newFakeClock()
	setups := map[string]func(*Timer){
		"idle": func(*Timer) {},
		"running": func(tm *Timer) {
			tm.Start()
			c.advance(42 * time.Second)
			tm.Recompute()
		},
		"paused": func(tm *Timer) {
			tm.Start()
			c.advance(42 * time.Second)
			tm.Recompute()
			tm.Pause()
		},
		"expired": func(tm *Timer) {
			tm.Start()
			c.advance(TotalDuration + time.Second)
			tm.Recompute()
		},
	}

	initial := New(c)
	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			tm := New(c)
			setup(&tm)
			tm.Reset()
			if tm.Remaining() != initial.Remaining() || tm.Running() != initial.Running() {
				t.Fatalf("reset state = (%d, %v), want (%d, %v)",
					tm.Remaining(), tm.Running(), initial.Remaining(), initial.Running())
			}
			if _, ok := tm.Deadline(); ok {
				t.Fatal("deadline should be cleared")
			}
			if tm.State() != Idle {
				t.Fatalf("expected Idle, got %v", tm.State())
			}
		})
	}
}

// ============================================================
// Recompute
// ============================================================

func TestRecomputeOneSecond(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	tm.Toggle()

	c.advance(time.Second)
	tm.Recompute()
	if got := Format(tm.Remaining()); got != "24:59" {
		t.Fatalf("after 1s display = %q, want 24:59", got)
	}
}

func TestRecomputeFloorsPartialSeconds(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	tm.Start()

	c.advance(1500 * time.Millisecond)
	tm.Recompute()
	if tm.Remaining() != TotalSeconds-2 {
		t.Fatalf("expected %d, got %d", TotalSeconds-2, tm.Remaining())
	}
}

func TestRecomputeNoDriftAfterMissedTicks(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	tm.Start()

	// One late tick after a long suspension lands where the wall clock says.
	c.advance(7*time.Minute + 250*time.Millisecond)
	tm.Recompute()
	if tm.Remaining() != TotalSeconds-7*60-1 {
		t.Fatalf("expected %d, got %d", TotalSeconds-7*60-1, tm.Remaining())
	}
}

func TestRecomputeExpires(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	tm.Reset()
	tm.remaining = 3
	tm.Start()

	d, _ := tm.Deadline()
	if want := c.now.Add(3000 * time.Millisecond); !d.Equal(want) {
		t.Fatalf("deadline = %v, want %v", d, want)
	}

	c.advance(3500 * time.Millisecond)
	if !tm.Recompute() {
		t.Fatal("recompute should report expiry")
	}
	if tm.Remaining() != 0 || tm.Running() {
		t.Fatalf("expected (0, false), got (%d, %v)", tm.Remaining(), tm.Running())
	}
	if tm.State() != Expired {
		t.Fatalf("expected Expired, got %v", tm.State())
	}

	// Expiry is reported once.
	if tm.Recompute() {
		t.Fatal("second recompute should not report expiry")
	}
}

func TestStartWhenExpiredIsNoop(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	tm.Start()
	c.advance(TotalDuration)
	tm.Recompute()

	if tm.Start() {
		t.Fatal("start on expired timer should be a no-op")
	}
	if tm.Running() {
		t.Fatal("expired timer should stay stopped")
	}
}

func TestRecomputeWhenNotRunning(t *testing.T) {
	tm := New(newFakeClock())
	if tm.Recompute() {
		t.Fatal("idle recompute should be a no-op")
	}
	if tm.Remaining() != TotalSeconds {
		t.Fatal("idle remaining should be untouched")
	}
}

func TestGenerationChangesOnTransitions(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	seen := map[int]bool{tm.Generation(): true}

	steps := []func(){
		func() { tm.Start() },
		func() { tm.Pause() },
		func() { tm.Start() },
		func() { tm.Reset() },
	}
	for i, step := range steps {
		step()
		if seen[tm.Generation()] {
			t.Fatalf("step %d reused generation %d", i, tm.Generation())
		}
		seen[tm.Generation()] = true
	}
}

func TestElapsedAndFraction(t *testing.T) {
	c := newFakeClock()
	tm := New(c)
	if tm.Elapsed() != 0 || tm.Fraction() != 0 {
		t.Fatal("idle timer should have nothing elapsed")
	}

	tm.Start()
	c.advance(TotalDuration / 2)
	tm.Recompute()
	if tm.Elapsed() != TotalDuration/2 {
		t.Fatalf("elapsed = %v", tm.Elapsed())
	}
	if tm.Fraction() != 0.5 {
		t.Fatalf("fraction = %v", tm.Fraction())
	}
}

func TestStateNames(t *testing.T) {
	for _, s := range []State{Idle, Running, Paused, Expired} {
		if s.String() == "" || s.String() == "UNKNOWN" {
			t.Fatalf("missing name for state %d", s)
		}
	}
	if State(99).String() != "UNKNOWN" {
		t.Fatal("out of range state should be UNKNOWN")
	}
}

// ============================================================
// Format
// ============================================================

func TestFormat(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{65, "1:05"},
		{600, "10:00"},
		{1499, "24:59"},
		{1500, "25:00"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := Format(tt.secs); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatShape(t *testing.T) {
	shape := regexp.MustCompile(`^(0|[1-9][0-9]*):[0-5][0-9]$`)
	for s := 0; s < TotalSeconds; s++ {
		if got := Format(s); !shape.MatchString(got) {
			t.Fatalf("Format(%d) = %q has the wrong shape", s, got)
		}
	}
}
