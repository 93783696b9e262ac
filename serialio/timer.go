package serialio

import "time"

// WallClockTimer implements Timer over the host's wall clock. Its
// zero value behaves as already elapsed: Wait() compares against a
// zero deadline, which any real timestamp is always past.
type WallClockTimer struct {
	deadline time.Time
}

// NewWallClockTimer returns a timer that is already elapsed.
func NewWallClockTimer() *WallClockTimer {
	return &WallClockTimer{}
}

// Start arms the timer for durationMs milliseconds from now.
func (w *WallClockTimer) Start(durationMs uint32) {
	w.deadline = time.Now().Add(time.Duration(durationMs) * time.Millisecond)
}

// Wait reports whether the timer has elapsed. It never blocks; the
// caller polls it.
func (w *WallClockTimer) Wait() bool {
	return !time.Now().Before(w.deadline)
}
