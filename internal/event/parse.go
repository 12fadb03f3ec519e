package event

import (
	"fmt"
	"time"
	"unicode"
)

// WireTimeFormat is the timestamp layout used by the upstream schedule
// snapshot. Timestamps on the wire are wall-clock times in the event
// timezone, without an offset.
const WireTimeFormat = "2006-01-02 15:04:05"

// Raw is an event row as published by the upstream schedule snapshot.
// Field shapes are loose on purpose; Parse normalises them.
type Raw struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Venue       string `json:"venue"`
	Title       string `json:"title"`
	Speaker     string `json:"speaker,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`

	MayRecord        bool `json:"may_record"`
	IsFave           bool `json:"is_fave"`
	IsFamilyFriendly bool `json:"is_family_friendly"`
	RequiresTicket   bool `json:"requires_ticket"`

	Source      string `json:"source"`
	Link        string `json:"link,omitempty"`
	Cost        string `json:"cost,omitempty"`
	Equipment   string `json:"equipment,omitempty"`
	AgeRange    string `json:"age_range,omitempty"`
	ContentNote string `json:"content_note,omitempty"`
}

// Parse converts a raw snapshot row into an Event, applying defaults and
// computing derived fields. Timestamps are interpreted in loc.
//
// Rows that fail validation are expected to be dropped by the caller; a
// single bad row must never abort a whole rebuild.
func Parse(raw Raw, loc *time.Location) (Event, error) {
	if raw.ID == 0 {
		return Event{}, fmt.Errorf("event has no id (title %q)", raw.Title)
	}
	if raw.Venue == "" {
		return Event{}, fmt.Errorf("event %d has no venue", raw.ID)
	}

	start, err := time.ParseInLocation(WireTimeFormat, raw.StartDate, loc)
	if err != nil {
		return Event{}, fmt.Errorf("event %d: parse start_date %q: %w", raw.ID, raw.StartDate, err)
	}
	end, err := time.ParseInLocation(WireTimeFormat, raw.EndDate, loc)
	if err != nil {
		return Event{}, fmt.Errorf("event %d: parse end_date %q: %w", raw.ID, raw.EndDate, err)
	}
	if !start.Before(end) {
		return Event{}, fmt.Errorf("event %d: start %s is not before end %s", raw.ID, raw.StartDate, raw.EndDate)
	}

	e := Event{
		ID:               raw.ID,
		Slug:             raw.Slug,
		Title:            raw.Title,
		Description:      raw.Description,
		Speaker:          raw.Speaker,
		Venue:            raw.Venue,
		Type:             raw.Type,
		StartTime:        start,
		EndTime:          end,
		Source:           raw.Source,
		MayRecord:        raw.MayRecord,
		IsFave:           raw.IsFave,
		IsFamilyFriendly: raw.IsFamilyFriendly,
		RequiresTicket:   raw.RequiresTicket,
		AgeRange:         raw.AgeRange,
		Cost:             raw.Cost,
		Equipment:        raw.Equipment,
		ContentNote:      raw.ContentNote,
		Link:             raw.Link,
	}

	if e.AgeRange == "" {
		e.AgeRange = AgeRangeUnspecified
	}

	e.Official = e.Source == SourceDatabase
	e.NoRecording = e.Official && e.Type == "talk" && !e.MayRecord
	e.HumanReadableType = humanReadableType(e.Type)

	return e, nil
}

// ParseAll parses every raw row, dropping rows that fail validation.
// onFailure, if non-nil, is invoked for each dropped row with the parse
// error; the rebuild itself never aborts.
func ParseAll(raws []Raw, loc *time.Location, onFailure func(Raw, error)) []Event {
	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		e, err := Parse(raw, loc)
		if err != nil {
			if onFailure != nil {
				onFailure(raw, err)
			}
			continue
		}
		events = append(events, e)
	}
	return events
}

// ToRaw converts an Event back to the wire row shape, with wall-clock
// timestamps in the event's own location.
func ToRaw(e Event) Raw {
	return Raw{
		ID:               e.ID,
		Slug:             e.Slug,
		StartDate:        e.StartTime.Format(WireTimeFormat),
		EndDate:          e.EndTime.Format(WireTimeFormat),
		Venue:            e.Venue,
		Title:            e.Title,
		Speaker:          e.Speaker,
		Description:      e.Description,
		Type:             e.Type,
		MayRecord:        e.MayRecord,
		IsFave:           e.IsFave,
		IsFamilyFriendly: e.IsFamilyFriendly,
		RequiresTicket:   e.RequiresTicket,
		Source:           e.Source,
		Link:             e.Link,
		Cost:             e.Cost,
		Equipment:        e.Equipment,
		AgeRange:         e.AgeRange,
		ContentNote:      e.ContentNote,
	}
}

// humanReadableType maps a type id to its display name. The one irregular
// id is "youthworkshop"; everything else is title-cased as-is.
func humanReadableType(id string) string {
	if id == "youthworkshop" {
		return "Youth Workshop"
	}
	if id == "" {
		return ""
	}
	runes := []rune(id)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
