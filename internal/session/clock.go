package session

import "time"

// Clock provides current time and can be swapped for a fixed source in
// tests so freshness policy is testable without sleeping.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock implements Clock with a settable time for testing.
type FixedClock struct {
	current time.Time
}

// NewFixedClock creates a FixedClock pinned to t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{current: t}
}

// Now returns the pinned time.
func (f *FixedClock) Now() time.Time { return f.current }

// Advance moves the pinned time forward by d.
func (f *FixedClock) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}
