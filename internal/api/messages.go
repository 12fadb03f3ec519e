package api

import (
	"net/http"

	"github.com/campfield/lineup-companion/internal/store"
)

// handleMessages handles GET /api/schedule_messages
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.messages.Visible(r.Context(), s.clk.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}
