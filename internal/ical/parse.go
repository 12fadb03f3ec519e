package ical

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Entry is a normalised VEVENT before recurrence expansion.
type Entry struct {
	Source Source

	UID         string
	Summary     string
	Description string
	Link        string

	Start    time.Time
	End      time.Time
	RawRRule string
}

// Parse reads one feed body into entries. Individual broken events are
// logged and skipped; a feed-level parse error fails the whole feed.
func Parse(src Source, body []byte, logger *slog.Logger) ([]Entry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(body) == 0 {
		return nil, errors.New("empty calendar body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar %q: %w", src.Name, err)
	}

	var entries []Entry
	for _, ve := range cal.Events() {
		entry, err := parseVEvent(src, ve)
		if err != nil {
			logger.Warn("skipping calendar event", "source", src.Name, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (Entry, error) {
	entry := Entry{Source: src}

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return entry, errors.New("missing UID")
	}
	entry.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		entry.Summary = p.Value
	}
	if entry.Summary == "" {
		return entry, fmt.Errorf("event %s has no summary", entry.UID)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		entry.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		entry.Link = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return entry, fmt.Errorf("event %s: bad start: %w", entry.UID, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return entry, fmt.Errorf("event %s: bad end: %w", entry.UID, err)
	}
	if !start.Before(end) {
		return entry, fmt.Errorf("event %s: start is not before end", entry.UID)
	}
	entry.Start = start
	entry.End = end

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		entry.RawRRule = p.Value
	}

	return entry, nil
}
