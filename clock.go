package stardust

import "time"

// Clock is the monotonic time source shared by the monitor and the
// scheduler. Every delta in a frame is computed from the same Clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock with its monotonic component.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a Clock that only moves when told to. Fixed-timestep
// drivers and tests advance it explicitly between ticks.
type ManualClock struct {
	now time.Time
}

// NewManualClock creates a ManualClock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	return c.now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.now = t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// frameDuration is the nominal length of one simulation frame. Field steps
// are expressed in multiples of it.
const frameDuration = time.Second / 60

// framesFor converts an elapsed duration into nominal frames.
func framesFor(d time.Duration) float64 {
	return float64(d) / float64(frameDuration)
}

// millis converts a duration into fractional milliseconds.
func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
