package ical

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/campfield/lineup-companion/internal/event"
)

// occurrenceCap bounds RRULE expansion for a single entry.
const occurrenceCap = 500

// Window is the festival window; occurrences outside it are dropped.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether an occurrence intersects the window.
func (w Window) Contains(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}

// Expand turns parsed entries into schedule events within the window,
// expanding recurring entries via their RRULE. Events carry stable
// negative ids so they never collide with organiser proposal ids.
func Expand(entries []Entry, window Window, loc *time.Location, logger *slog.Logger) []event.Event {
	if logger == nil {
		logger = slog.Default()
	}

	var events []event.Event
	for _, entry := range entries {
		if entry.RawRRule == "" {
			if window.Contains(entry.Start, entry.End) {
				events = append(events, toEvent(entry, entry.Start, entry.End, loc))
			}
			continue
		}

		r, err := rrule.StrToRRule(entry.RawRRule)
		if err != nil {
			logger.Warn("skipping unparseable recurrence rule",
				"source", entry.Source.Name, "uid", entry.UID, "error", err)
			continue
		}
		r.DTStart(entry.Start)

		duration := entry.End.Sub(entry.Start)
		starts := r.Between(window.Start.Add(-duration), window.End, true)
		if len(starts) > occurrenceCap {
			logger.Warn("truncating recurrence expansion",
				"source", entry.Source.Name, "uid", entry.UID, "cap", occurrenceCap)
			starts = starts[:occurrenceCap]
		}

		for _, start := range starts {
			end := start.Add(duration)
			if window.Contains(start, end) {
				events = append(events, toEvent(entry, start, end, loc))
			}
		}
	}
	return events
}

// toEvent maps one occurrence onto the schedule event model. External
// events are typed as talks and take the source's venue; the derived
// fields follow from the external source.
func toEvent(entry Entry, start, end time.Time, loc *time.Location) event.Event {
	return event.Event{
		ID:                ExternalID(entry.Source.Name, entry.UID, start),
		Title:             entry.Summary,
		Description:       entry.Description,
		Venue:             entry.Source.Venue,
		Type:              "talk",
		HumanReadableType: "Talk",
		StartTime:         start.In(loc),
		EndTime:           end.In(loc),
		Source:            event.SourceExternal,
		AgeRange:          event.AgeRangeUnspecified,
		Link:              entry.Link,
	}
}

// ExternalID derives a stable negative id for one occurrence of an
// external event from its source, UID and start instant. Negative ids
// keep external events apart from proposal ids; API paths carry the
// absolute value.
func ExternalID(sourceName, uid string, start time.Time) int64 {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s", sourceName, uid, start.UTC().Format(time.RFC3339)))
	id := int64(binary.BigEndian.Uint64(h[:8]) & (1<<62 - 1))
	if id == 0 {
		id = 1
	}
	return -id
}
