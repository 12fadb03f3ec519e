// Package schedule implements the filtering and hourly bucketing engine
// behind the programme view. It is a pure value-in/value-out transform:
// callers rebuild the View on every option or data change.
package schedule

import (
	"sort"
	"time"

	"github.com/campfield/lineup-companion/internal/event"
)

// Options control which events are visible and how they are bucketed.
// A nil selection slice means that filter is not configured; an empty
// non-nil slice excludes everything, matching a selector with every box
// unticked.
type Options struct {
	CurrentTime time.Time

	SelectedVenues     []string
	SelectedEventTypes []string
	SelectedAgeRanges  []string

	OnlyFavourites     bool
	OnlyFamilyFriendly bool
	OnlyTicketed       bool
	IncludeFinished    bool
}

// View is a display-ready projection of the schedule: per-hour buckets of
// visible events plus filter facets derived from every not-finished event,
// independent of the active selections.
type View struct {
	// Hours is the ascending list of hour-aligned instants with at least
	// one visible event.
	Hours []time.Time

	// ByHour maps HourKey(hour) to the visible events for that hour,
	// sorted by start time with venue as tie-break.
	ByHour map[string][]event.Event

	Venues     []Venue
	EventTypes []EventType
	AgeRanges  []string

	// AllFinished is true when no event ends after CurrentTime.
	AllFinished bool
}

// HourKey returns the bucket key for an hour-aligned instant.
func HourKey(hour time.Time) string {
	return hour.Format(time.RFC3339)
}

// ContentForHour returns the visible events bucketed under hour.
func (v *View) ContentForHour(hour time.Time) []event.Event {
	return v.ByHour[HourKey(hour)]
}

// Build runs the engine: one pass over events applying the finished-event
// gate, facet registration and selection filters, then the sort passes.
// Events are assumed to be parsed (derived fields populated).
func Build(events []event.Event, opts Options) *View {
	v := &View{
		ByHour:      make(map[string][]event.Event),
		AllFinished: true,
	}
	facets := newFacetSet()

	for _, e := range events {
		if e.EndTime.After(opts.CurrentTime) {
			v.AllFinished = false
		} else if !opts.IncludeFinished {
			// Finished events contribute to no facet and no bucket.
			continue
		}

		// Facets register before the selection filters so that changing a
		// selection never shrinks the selector lists themselves.
		facets.addVenue(e.Venue, e.Official)
		facets.addEventType(e.Type, e.HumanReadableType)
		facets.addAgeRange(e.AgeRange)

		if opts.SelectedVenues != nil && !containsString(opts.SelectedVenues, e.Venue) {
			continue
		}
		if opts.SelectedEventTypes != nil && !containsString(opts.SelectedEventTypes, e.Type) {
			continue
		}
		if opts.SelectedAgeRanges != nil && !containsString(opts.SelectedAgeRanges, e.AgeRange) {
			continue
		}
		if opts.OnlyFavourites && !e.IsFave {
			continue
		}
		if opts.OnlyFamilyFriendly && !e.IsFamilyFriendly {
			continue
		}
		if opts.OnlyTicketed && !e.RequiresTicket {
			continue
		}

		hour := floorHour(e.StartTime)
		if !e.StartTime.After(opts.CurrentTime) && !opts.IncludeFinished {
			// Collapse ongoing events into the current hour slot rather
			// than leaving them in a past, hidden slot.
			hour = floorHour(opts.CurrentTime)
		}

		key := HourKey(hour)
		if _, ok := v.ByHour[key]; !ok {
			v.Hours = append(v.Hours, hour)
		}
		v.ByHour[key] = append(v.ByHour[key], e)
	}

	for key := range v.ByHour {
		bucket := v.ByHour[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			if !bucket[i].StartTime.Equal(bucket[j].StartTime) {
				return bucket[i].StartTime.Before(bucket[j].StartTime)
			}
			return bucket[i].Venue < bucket[j].Venue
		})
	}

	sort.Slice(v.Hours, func(i, j int) bool {
		return v.Hours[i].Before(v.Hours[j])
	})

	v.Venues = facets.sortedVenues()
	v.EventTypes = facets.sortedEventTypes()
	v.AgeRanges = facets.sortedAgeRanges()

	return v
}

// floorHour floors an instant to the start of its wall-clock hour,
// preserving the location. Truncate is not used because it floors against
// UTC and misbehaves in zones with non-whole-hour offsets.
func floorHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
