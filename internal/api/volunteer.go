package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/campfield/lineup-companion/internal/shiftboard"
	"github.com/campfield/lineup-companion/internal/store"
)

// shiftMapResponse represents the response for the full shift map.
type shiftMapResponse struct {
	Days   []string                                 `json:"days"`
	Shifts map[string]map[string][]shiftboard.Shift `json:"shifts"`
}

// handleShiftMap handles GET /api/volunteer/shifts
func (s *Server) handleShiftMap(w http.ResponseWriter, r *http.Request) {
	user := s.viewer(r)

	days, err := s.shifts.Days(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	shifts, err := s.shifts.Map(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}

	if days == nil {
		days = []string{}
	}
	writeJSON(w, http.StatusOK, shiftMapResponse{Days: days, Shifts: shifts})
}

// volunteerScheduleResponse represents the rendered board for one day.
type volunteerScheduleResponse struct {
	Day   string                 `json:"day"`
	Hours []shiftboard.HourGroup `json:"hours"`
}

// handleVolunteerSchedule handles GET /api/volunteer/schedule?day=
//
// Filter parameters override the persisted selection per key; absent keys
// fall back to what the viewer last saved.
func (s *Server) handleVolunteerSchedule(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if day == "" {
		writeError(w, http.StatusBadRequest, "missing day", nil)
		return
	}

	user := s.viewer(r)
	filters, err := s.shifts.Filters(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	if err := overlayFilterParams(&filters, r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	groups, err := s.shifts.Render(r.Context(), user, day, filters, s.clk.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	if groups == nil {
		groups = []shiftboard.HourGroup{}
	}

	writeJSON(w, http.StatusOK, volunteerScheduleResponse{Day: day, Hours: groups})
}

// overlayFilterParams applies query parameters on top of the persisted
// filter selection. role_ids is comma separated; the booleans use the
// same names as the persisted document.
func overlayFilterParams(f *shiftboard.Filters, r *http.Request) error {
	q := r.URL.Query()

	if ids, ok := q["role_ids"]; ok {
		f.RoleIDs = []int64{}
		for _, raw := range ids {
			for _, part := range strings.Split(raw, ",") {
				if part == "" {
					continue
				}
				id, err := strconv.ParseInt(part, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid role_ids: %q", part)
				}
				f.RoleIDs = append(f.RoleIDs, id)
			}
		}
	}

	overlays := []struct {
		key  string
		dest *bool
	}{
		{"show_finished_shifts", &f.ShowPast},
		{"signed_up", &f.SignedUpOnly},
		{"hide_full", &f.HideFull},
		{"hide_staffed", &f.UnderstaffedOnly},
		{"colourful_mode", &f.ColourfulMode},
	}
	for _, o := range overlays {
		values, ok := q[o.key]
		if !ok || len(values) == 0 || values[0] == "" {
			continue
		}
		b, err := strconv.ParseBool(values[0])
		if err != nil {
			return fmt.Errorf("invalid %s: %q", o.key, values[0])
		}
		*o.dest = b
	}

	return nil
}

// handleShiftSignup handles POST /api/volunteer/shift/{id}
func (s *Server) handleShiftSignup(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	shiftID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || shiftID == 0 {
		writeError(w, http.StatusBadRequest, "invalid shift id", nil)
		return
	}

	overrideUser := r.URL.Query().Get("override_user")

	result, err := s.shifts.SignUp(r.Context(), shiftID, user, overrideUser)
	switch {
	case errors.Is(err, store.ErrShiftNotFound):
		writeError(w, http.StatusNotFound, "shift not found", nil)
		return
	case errors.Is(err, store.ErrShiftFull):
		writeError(w, http.StatusConflict, "this shift is already full", nil)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleRoles handles GET /api/volunteer/roles
func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.shifts.Roles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	if roles == nil {
		roles = []store.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}

// handleGetFilters handles GET /api/volunteer/filters
func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := s.shifts.Filters(r.Context(), s.viewer(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

// handlePutFilters handles PUT /api/volunteer/filters
func (s *Server) handlePutFilters(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	var filters shiftboard.Filters
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&filters); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if filters.RoleIDs == nil {
		filters.RoleIDs = []int64{}
	}

	if err := s.shifts.SaveFilters(r.Context(), filters); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

// handleStats handles GET /api/volunteer/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.stats.Overview(r.Context(), s.clk.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	if result.Urgent == nil {
		result.Urgent = []store.ShiftRow{}
	}
	writeJSON(w, http.StatusOK, result)
}
