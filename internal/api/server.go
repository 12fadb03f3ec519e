// Package api provides the HTTP API server.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/campfield/lineup-companion/internal/app"
	"github.com/campfield/lineup-companion/internal/clock"
	"github.com/campfield/lineup-companion/internal/store"
)

// anonymousUser is the user identity when Basic Auth is not configured.
// The tool then runs single-user and every favourite and signup belongs
// to this identity.
const anonymousUser = "local"

// loginLocation is the redirect hint sent with authorization errors.
const loginLocation = "/login"

// Server represents the HTTP API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux

	// Use case dependencies
	health     app.HealthUsecase
	schedule   app.ScheduleUsecase
	shifts     app.ShiftsUsecase
	favourites app.FavouritesUsecase
	messages   app.MessagesUsecase
	stats      app.StatsUsecase

	clk  clock.Clock
	year int

	limiter   *RateLimiter
	authFails *AuthFailureLimiter

	// Auth configuration
	authEnabled  bool
	authUsername string
	authPassword string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithScheduleUsecase sets the schedule view use case.
func WithScheduleUsecase(schedule app.ScheduleUsecase) ServerOption {
	return func(s *Server) { s.schedule = schedule }
}

// WithShiftsUsecase sets the volunteer shift board use case.
func WithShiftsUsecase(shifts app.ShiftsUsecase) ServerOption {
	return func(s *Server) { s.shifts = shifts }
}

// WithFavouritesUsecase sets the favourite toggle use case.
func WithFavouritesUsecase(favourites app.FavouritesUsecase) ServerOption {
	return func(s *Server) { s.favourites = favourites }
}

// WithMessagesUsecase sets the site notices use case.
func WithMessagesUsecase(messages app.MessagesUsecase) ServerOption {
	return func(s *Server) { s.messages = messages }
}

// WithStatsUsecase sets the staffing overview use case.
func WithStatsUsecase(stats app.StatsUsecase) ServerOption {
	return func(s *Server) { s.stats = stats }
}

// WithClock sets the reference clock. Defaults to the real clock.
func WithClock(clk clock.Clock) ServerOption {
	return func(s *Server) { s.clk = clk }
}

// WithYear sets the event year served by the snapshot endpoint.
func WithYear(year int) ServerOption {
	return func(s *Server) { s.year = year }
}

// WithRateLimiter enables IP rate limiting on mutation endpoints.
func WithRateLimiter(rl *RateLimiter) ServerOption {
	return func(s *Server) { s.limiter = rl }
}

// WithBasicAuth enables HTTP Basic Auth.
func WithBasicAuth(username, password string) ServerOption {
	return func(s *Server) {
		if username != "" && password != "" {
			s.authEnabled = true
			s.authUsername = username
			s.authPassword = password
		}
	}
}

// NewServer creates a new API server with the given dependencies.
func NewServer(addr string, health app.HealthUsecase, opts ...ServerOption) *Server {
	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      securityHeadersMiddleware(csrfMiddleware(nil)(mux)),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:    mux,
		health: health,
		clk:    clock.Real{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authEnabled {
		s.authFails = NewAuthFailureLimiter(DefaultAuthFailureLimiterConfig())
	}
	s.registerRoutes()
	return s
}

// wrapMutation applies the rate limiter (if configured) to a
// state-changing handler.
func (s *Server) wrapMutation(h http.Handler) http.Handler {
	if s.limiter == nil {
		return h
	}
	return s.limiter.Middleware(h)
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	// Health endpoint (no auth required)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	if s.schedule != nil {
		s.mux.HandleFunc("GET /schedule/{year}.json", s.handleYearJSON)
		s.mux.HandleFunc("GET /api/schedule", s.handleSchedule)
	}

	if s.favourites != nil {
		s.mux.Handle("PUT /api/proposal/{id}/favourite", s.wrapMutation(s.favouriteHandler(store.FavouriteProposal)))
		s.mux.Handle("PUT /api/external/{id}/favourite", s.wrapMutation(s.favouriteHandler(store.FavouriteExternal)))
	}

	if s.messages != nil {
		s.mux.HandleFunc("GET /api/schedule_messages", s.handleMessages)
	}

	if s.shifts != nil {
		s.mux.HandleFunc("GET /api/volunteer/shifts", s.handleShiftMap)
		s.mux.HandleFunc("GET /api/volunteer/schedule", s.handleVolunteerSchedule)
		s.mux.Handle("POST /api/volunteer/shift/{id}", s.wrapMutation(http.HandlerFunc(s.handleShiftSignup)))
		s.mux.HandleFunc("GET /api/volunteer/roles", s.handleRoles)
		s.mux.HandleFunc("GET /api/volunteer/filters", s.handleGetFilters)
		s.mux.Handle("PUT /api/volunteer/filters", s.wrapMutation(http.HandlerFunc(s.handlePutFilters)))
	}

	if s.stats != nil {
		s.mux.HandleFunc("GET /api/volunteer/stats", s.handleStats)
	}
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result, err := s.health.Handle(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// viewer returns the user identity for read endpoints. Invalid or absent
// credentials degrade to an anonymous view rather than failing.
func (s *Server) viewer(r *http.Request) string {
	if !s.authEnabled {
		return anonymousUser
	}
	u, p, ok := r.BasicAuth()
	if !ok {
		return ""
	}
	if !constantTimeEqualString(u, s.authUsername) || !constantTimeEqualString(p, s.authPassword) {
		return ""
	}
	return u
}

// requireUser returns the authenticated user for mutation endpoints,
// writing the authorization error payload when credentials are missing
// or wrong.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !s.authEnabled {
		return anonymousUser, true
	}

	ip := extractIP(r)
	if s.authFails.IsLocked(ip) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:       "locked_out",
			Description: "too many failed login attempts",
		})
		return "", false
	}

	u, p, ok := r.BasicAuth()
	if ok && constantTimeEqualString(u, s.authUsername) && constantTimeEqualString(p, s.authPassword) {
		s.authFails.RecordSuccess(ip)
		return u, true
	}
	if ok {
		s.authFails.RecordFailure(ip)
	}

	w.Header().Set("WWW-Authenticate", `Basic realm="Lineup Companion"`)
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Error:       "unauthorized",
		Description: "you must be logged in to do that",
		Location:    loginLocation,
	})
	return "", false
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
