package store

import "errors"

// ErrRunClosed is returned when updating a run that is missing or already
// finished.
var ErrRunClosed = errors.New("run not open")
