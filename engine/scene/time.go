package scene

import "time"

// Time is the frame clock reading handed to systems.
type Time struct {
	elapsed float64
	delta   float64
}

// NewTime returns a Time with the given readings. Used by tests and fixed-step drivers.
//
// Parameters:
//   - elapsed: seconds since the clock started
//   - delta: seconds since the previous frame
//
// Returns:
//   - Time: the reading
func NewTime(elapsed, delta float64) Time {
	return Time{elapsed: elapsed, delta: delta}
}

// Elapsed returns seconds since the clock started.
func (t Time) Elapsed() float64 {
	return t.elapsed
}

// Delta returns seconds since the previous frame.
func (t Time) Delta() float64 {
	return t.delta
}

// Clock produces Time readings from the wall clock. Not safe for concurrent use; the frame loop
// owns it.
type Clock struct {
	start time.Time
	last  time.Time
	now   func() time.Time
}

// NewClock starts a clock at the current instant.
func NewClock() *Clock {
	return newClock(time.Now)
}

func newClock(now func() time.Time) *Clock {
	t := now()
	return &Clock{start: t, last: t, now: now}
}

// Tick reads the clock and advances the previous-frame mark.
//
// Returns:
//   - Time: elapsed and delta seconds
func (c *Clock) Tick() Time {
	t := c.now()
	delta := t.Sub(c.last).Seconds()
	c.last = t
	return Time{elapsed: t.Sub(c.start).Seconds(), delta: delta}
}
