// Package event provides the shared schedule event model.
// This package is used by the schedule, snapshot, api and store packages.
package event

import (
	"time"
)

// Event source constants.
const (
	// SourceDatabase marks events accepted through the organiser's
	// call-for-proposals pipeline.
	SourceDatabase = "database"
	// SourceExternal marks events pulled from published calendar feeds.
	SourceExternal = "external"
)

// AgeRangeUnspecified is the default age range label applied at parse time.
const AgeRangeUnspecified = "Unspecified"

// Event is the domain model for a single schedule entry, with derived
// fields applied at parse time. It is immutable once parsed; a rebuild
// replaces the whole collection.
type Event struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Speaker     string `json:"speaker,omitempty"`

	Venue string `json:"venue"`
	Type  string `json:"type"`

	StartTime time.Time `json:"start_date"`
	EndTime   time.Time `json:"end_date"`

	Source           string `json:"source"`
	MayRecord        bool   `json:"may_record"`
	IsFave           bool   `json:"is_fave"`
	IsFamilyFriendly bool   `json:"is_family_friendly"`
	RequiresTicket   bool   `json:"requires_ticket"`

	AgeRange    string `json:"age_range"`
	Cost        string `json:"cost,omitempty"`
	Equipment   string `json:"equipment,omitempty"`
	ContentNote string `json:"content_note,omitempty"`
	Link        string `json:"link,omitempty"`

	// Derived at parse time.
	Official          bool   `json:"official"`
	NoRecording       bool   `json:"no_recording"`
	HumanReadableType string `json:"human_readable_type"`
}

// Finished reports whether the event has ended at the reference time.
func (e Event) Finished(now time.Time) bool {
	return !e.EndTime.After(now)
}

// Ongoing reports whether the event has started but not finished at the
// reference time.
func (e Event) Ongoing(now time.Time) bool {
	return !e.StartTime.After(now) && e.EndTime.After(now)
}
