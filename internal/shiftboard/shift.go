// Package shiftboard implements the volunteer shift board: the
// day/hour-grouped shift map, the per-day filtered render with rowspan
// groups, and the in-place signup mutation applied after a signup or
// cancel round-trip.
package shiftboard

import (
	"strings"
	"time"
)

// Shift is a single volunteer shift as served to the board.
type Shift struct {
	ID       int64  `json:"id"`
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role"`
	Venue    string `json:"venue"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Display strings, derived from Start/End at build time.
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	MinNeeded    int `json:"min_needed"`
	MaxNeeded    int `json:"max_needed"`
	CurrentCount int `json:"current_count"`

	// IsUserShift is true when the viewing user is signed up.
	IsUserShift bool `json:"is_user_shift"`

	SignUpURL string `json:"sign_up_url"`
}

// Staffed reports whether the shift has met its minimum requirement.
func (s Shift) Staffed() bool {
	return s.CurrentCount >= s.MinNeeded
}

// Full reports whether the shift has reached its maximum.
func (s Shift) Full() bool {
	return s.CurrentCount == s.MaxNeeded
}

// Understaffed reports whether the shift is below its minimum requirement.
func (s Shift) Understaffed() bool {
	return s.CurrentCount < s.MinNeeded
}

// DayKey returns the board's day key for an instant, a lowercased
// three-letter weekday ("fri").
func DayKey(t time.Time) string {
	return strings.ToLower(t.Format("Mon"))
}

// HourKey returns the board's hour key for an instant ("09:00"). Keys are
// zero-padded so lexicographic order is chronological order.
func HourKey(t time.Time) string {
	return t.Format("15:04")
}
