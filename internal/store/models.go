package store

import "time"

// Run status values.
const (
	StatusRunning   = "running"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusReset     = "reset"
	StatusAbandoned = "abandoned"
)

// Run is one countdown from its first start until it completes or is reset.
type Run struct {
	ID        int64
	Duration  int64 // configured length, seconds
	StartedAt time.Time
	EndedAt   *time.Time
	Elapsed   int64 // counted-down seconds
	Status    string
}

// Open reports whether the run has not yet completed or been reset.
func (r Run) Open() bool {
	return r.EndedAt == nil
}

// RunFilter is used to filter runs in queries.
type RunFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// DayCount is the number of completed runs on a local calendar day.
type DayCount struct {
	Date  time.Time
	Count int
}
