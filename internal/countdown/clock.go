package countdown

import "time"

// Clock abstracts wall-clock reads so the countdown can be driven by tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
