package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/campfield/lineup-companion/internal/event"
	"github.com/campfield/lineup-companion/internal/schedule"
)

// scheduleResponse represents the response for the schedule view endpoint.
type scheduleResponse struct {
	Hours       []time.Time              `json:"hours"`
	ByHour      map[string][]event.Event `json:"by_hour"`
	Venues      []schedule.Venue         `json:"venues"`
	EventTypes  []schedule.EventType     `json:"event_types"`
	AgeRanges   []string                 `json:"age_ranges"`
	AllFinished bool                     `json:"all_finished"`
}

// handleYearJSON handles GET /schedule/{year}.json
func (s *Server) handleYearJSON(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year != s.year {
		writeError(w, http.StatusNotFound, "no schedule for that year", nil)
		return
	}

	raws, err := s.schedule.RawEvents(r.Context(), s.viewer(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	if raws == nil {
		raws = []event.Raw{}
	}
	writeJSON(w, http.StatusOK, raws)
}

// handleSchedule handles GET /api/schedule
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseScheduleOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	view, err := s.schedule.BuildView(r.Context(), s.viewer(r), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}

	resp := scheduleResponse{
		Hours:       view.Hours,
		ByHour:      view.ByHour,
		Venues:      view.Venues,
		EventTypes:  view.EventTypes,
		AgeRanges:   view.AgeRanges,
		AllFinished: view.AllFinished,
	}

	// Ensure empty arrays, not null, for JSON serialization
	if resp.Hours == nil {
		resp.Hours = []time.Time{}
	}
	if resp.Venues == nil {
		resp.Venues = []schedule.Venue{}
	}
	if resp.EventTypes == nil {
		resp.EventTypes = []schedule.EventType{}
	}
	if resp.AgeRanges == nil {
		resp.AgeRanges = []string{}
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseScheduleOptions parses query parameters into engine Options.
//
// The selection parameters are tri-state: an absent key leaves the filter
// unconfigured (nil slice, everything passes), a present key restricts to
// its values, and a present key with only empty values excludes everything.
func (s *Server) parseScheduleOptions(r *http.Request) (schedule.Options, error) {
	q := r.URL.Query()

	opts := schedule.Options{
		CurrentTime:        s.clk.Now(),
		SelectedVenues:     selection(q, "venue"),
		SelectedEventTypes: selection(q, "event_type"),
		SelectedAgeRanges:  selection(q, "age_range"),
	}

	// Parse 'at' (RFC3339), the frozen-clock override
	if at := q.Get("at"); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return opts, fmt.Errorf("invalid at: %v", err)
		}
		opts.CurrentTime = t
	}

	var err error
	if opts.OnlyFavourites, err = boolParam(q, "favourites"); err != nil {
		return opts, err
	}
	if opts.OnlyFamilyFriendly, err = boolParam(q, "family_friendly"); err != nil {
		return opts, err
	}
	if opts.OnlyTicketed, err = boolParam(q, "ticketed"); err != nil {
		return opts, err
	}
	if opts.IncludeFinished, err = boolParam(q, "include_finished"); err != nil {
		return opts, err
	}

	return opts, nil
}

// selection reads a repeatable query key as a tri-state selection slice.
func selection(q map[string][]string, key string) []string {
	values, ok := q[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// boolParam parses an optional boolean query parameter, defaulting false.
func boolParam(q map[string][]string, key string) (bool, error) {
	values, ok := q[key]
	if !ok || len(values) == 0 || values[0] == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(values[0])
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, values[0])
	}
	return b, nil
}
