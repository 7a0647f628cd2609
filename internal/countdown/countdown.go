package countdown

import "time"

const (
	// TotalSeconds is the fixed length of a countdown.
	TotalSeconds = 25 * 60

	TotalDuration = TotalSeconds * time.Second
)

// State is the observable phase of a Timer.
type State int

const (
	Idle State = iota
	Running
	Paused
	Expired
)

var stateNames = map[State]string{
	Idle:    "IDLE",
	Running: "RUNNING",
	Paused:  "PAUSED",
	Expired: "DONE",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Timer is a deadline-based countdown. While running, the remaining time is
// always derived from the fixed deadline and the clock, never decremented.
type Timer struct {
	clock Clock

	remaining int // whole seconds, 0..TotalSeconds
	running   bool
	deadline  time.Time

	// gen changes on every transition in or out of Running. Periodic ticks
	// carry the generation they were scheduled under.
	gen int
}

func New(clock Clock) Timer {
	if clock == nil {
		clock = SystemClock
	}
	return Timer{
		clock:     clock,
		remaining: TotalSeconds,
	}
}

// Start begins counting down from the current remaining time. It reports
// whether the timer transitioned; starting a running or expired timer is a
// no-op.
func (t *Timer) Start() bool {
	if t.running || t.remaining <= 0 {
		return false
	}
	t.deadline = t.clock.Now().Add(time.Duration(t.remaining) * time.Second)
	t.running = true
	t.gen++
	return true
}

// Pause stops the countdown, keeping the last computed remaining time.
func (t *Timer) Pause() bool {
	if !t.running {
		return false
	}
	t.running = false
	t.deadline = time.Time{}
	t.gen++
	return true
}

func (t *Timer) Toggle() {
	if t.running {
		t.Pause()
	} else {
		t.Start()
	}
}

// Reset returns the timer to its initial state regardless of prior state.
func (t *Timer) Reset() {
	t.running = false
	t.deadline = time.Time{}
	t.remaining = TotalSeconds
	t.gen++
}

// Recompute refreshes the remaining time from the deadline. It returns true
// exactly when this call moved the timer to Expired.
func (t *Timer) Recompute() bool {
	if !t.running {
		return false
	}
	left := t.deadline.Sub(t.clock.Now())
	if left < 0 {
		left = 0
	}
	t.remaining = int(left / time.Second)
	if t.remaining > TotalSeconds {
		t.remaining = TotalSeconds
	}
	if t.remaining == 0 {
		t.running = false
		t.deadline = time.Time{}
		t.gen++
		return true
	}
	return false
}

func (t Timer) Remaining() int { return t.remaining }

func (t Timer) Running() bool { return t.running }

// Deadline returns the absolute expiry time, present only while running.
func (t Timer) Deadline() (time.Time, bool) {
	return t.deadline, t.running
}

// Generation identifies the current Running interval.
func (t Timer) Generation() int { return t.gen }

func (t Timer) State() State {
	switch {
	case t.running:
		return Running
	case t.remaining == 0:
		return Expired
	case t.remaining == TotalSeconds:
		return Idle
	default:
		return Paused
	}
}

// Elapsed is the counted-down portion of the total.
func (t Timer) Elapsed() time.Duration {
	return time.Duration(TotalSeconds-t.remaining) * time.Second
}

// Fraction is Elapsed as a share of the total, in [0, 1].
func (t Timer) Fraction() float64 {
	return float64(TotalSeconds-t.remaining) / float64(TotalSeconds)
}
