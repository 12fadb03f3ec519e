package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// favouriteRequest is the PUT body for the favourite endpoints. An empty
// body (or `{}`) toggles; a body with "state" sets it outright.
type favouriteRequest struct {
	State *bool `json:"state"`
}

// favouriteResponse represents the response for the favourite endpoints.
type favouriteResponse struct {
	IsFavourite bool `json:"is_favourite"`
}

// favouriteHandler returns the PUT handler for one favourite kind.
func (s *Server) favouriteHandler(kind string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || eventID == 0 {
			writeError(w, http.StatusBadRequest, "invalid event id", nil)
			return
		}

		var req favouriteRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body", nil)
			return
		}

		state, err := s.favourites.Apply(r.Context(), user, kind, eventID, req.State)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error", err)
			return
		}

		writeJSON(w, http.StatusOK, favouriteResponse{IsFavourite: state})
	})
}
