// Package clock abstracts the reference "current time" so that schedule
// projections can be pinned in tests and frozen for debugging.
package clock

import "time"

// Clock supplies the reference time used to decide which events are
// finished, ongoing or upcoming.
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the standard time package.
type Real struct{}

// Now returns the current local time.
func (Real) Now() time.Time {
	return time.Now()
}

// Fixed implements Clock with a pinned instant.
type Fixed struct {
	T time.Time
}

// Now returns the pinned instant.
func (f Fixed) Now() time.Time {
	return f.T
}

// At returns a Fixed clock pinned at t.
func At(t time.Time) Fixed {
	return Fixed{T: t}
}
