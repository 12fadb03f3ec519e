// Package snapshot manages the in-memory schedule snapshot: the upstream
// year programme merged with external calendar events, replaced wholesale
// on every refresh.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/campfield/lineup-companion/internal/event"
	"github.com/campfield/lineup-companion/internal/ical"
	"github.com/campfield/lineup-companion/internal/store"
)

// FailureRecorder records dropped schedule rows.
type FailureRecorder interface {
	InsertParseFailure(ctx context.Context, rawRow, errorMsg string) (bool, error)
}

// FavouriteReader resolves a user's favourited event ids by kind.
type FavouriteReader interface {
	FavouriteIDs(ctx context.Context, userID, kind string) (map[int64]bool, error)
}

// Config wires a Service.
type Config struct {
	UpstreamURL string // base URL of the festival site; empty disables upstream fetch
	Year        int
	Location    *time.Location
	Sources     []ical.Source
	Fetcher     *ical.Fetcher
	Failures    FailureRecorder
	Favourites  FavouriteReader
	Logger      *slog.Logger
	Client      *http.Client
}

// Service holds the current snapshot. Refresh is the single logical
// writer; the mutex guards concurrent API readers. A refresh that
// completes late is still applied on arrival.
type Service struct {
	mu        sync.RWMutex
	upstream  []event.Event
	external  []event.Event
	updatedAt time.Time

	cfg Config
	log *slog.Logger
}

// New creates a snapshot service with an empty snapshot.
func New(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{cfg: cfg, log: cfg.Logger}
}

// Refresh rebuilds the snapshot: one upstream request, a pass over the
// external calendar feeds, then an atomic swap. Malformed upstream rows
// are dropped, logged and recorded; they never abort the rebuild.
func (s *Service) Refresh(ctx context.Context) error {
	var upstream []event.Event

	if s.cfg.UpstreamURL != "" {
		fetched, err := s.fetchUpstream(ctx)
		if err != nil {
			return fmt.Errorf("fetch upstream schedule: %w", err)
		}
		upstream = fetched
	}

	external := s.fetchCalendars(ctx)

	s.mu.Lock()
	if s.cfg.UpstreamURL != "" {
		s.upstream = upstream
	}
	s.external = external
	s.updatedAt = time.Now()
	total := len(s.upstream) + len(s.external)
	s.mu.Unlock()

	s.log.Info("schedule snapshot refreshed", "events", total)
	return nil
}

// RefreshCalendars re-fetches only the external calendar feeds, leaving
// the upstream programme in place. Runs on its own schedule so that a
// slow feed never delays the programme refresh.
func (s *Service) RefreshCalendars(ctx context.Context) {
	external := s.fetchCalendars(ctx)

	s.mu.Lock()
	s.external = external
	s.updatedAt = time.Now()
	s.mu.Unlock()

	s.log.Info("external calendars refreshed", "events", len(external))
}

func (s *Service) fetchUpstream(ctx context.Context) ([]event.Event, error) {
	url := fmt.Sprintf("%s/schedule/%d.json",
		strings.TrimSuffix(s.cfg.UpstreamURL, "/"), s.cfg.Year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// Single request/response, no retry. A failed refresh leaves the
	// previous snapshot in place.
	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raws []event.Raw
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("decode schedule rows: %w", err)
	}

	return event.ParseAll(raws, s.cfg.Location, s.recordFailure(ctx)), nil
}

// recordFailure returns the drop handler for one rebuild: log a warning
// and record the row for later inspection.
func (s *Service) recordFailure(ctx context.Context) func(event.Raw, error) {
	return func(raw event.Raw, parseErr error) {
		s.log.Warn("dropping malformed schedule row", "id", raw.ID, "error", parseErr)
		if s.cfg.Failures == nil {
			return
		}
		rawJSON, err := json.Marshal(raw)
		if err != nil {
			return
		}
		if _, err := s.cfg.Failures.InsertParseFailure(ctx, string(rawJSON), parseErr.Error()); err != nil {
			s.log.Warn("failed to record parse failure", "error", err)
		}
	}
}

func (s *Service) fetchCalendars(ctx context.Context) []event.Event {
	if s.cfg.Fetcher == nil || len(s.cfg.Sources) == 0 {
		return nil
	}

	window := ical.Window{
		Start: time.Date(s.cfg.Year, 1, 1, 0, 0, 0, 0, s.cfg.Location),
		End:   time.Date(s.cfg.Year+1, 1, 1, 0, 0, 0, 0, s.cfg.Location),
	}

	var events []event.Event
	for _, res := range s.cfg.Fetcher.FetchAll(ctx, s.cfg.Sources) {
		entries, err := ical.Parse(res.Source, res.Body, s.log)
		if err != nil {
			s.log.Warn("skipping calendar feed", "source", res.Source.Name, "error", err)
			continue
		}
		events = append(events, ical.Expand(entries, window, s.cfg.Location, s.log)...)
	}
	return events
}

// Events returns a copy of the snapshot decorated with the user's
// favourite flags. An empty userID yields undecorated events.
func (s *Service) Events(ctx context.Context, userID string) ([]event.Event, error) {
	s.mu.RLock()
	events := make([]event.Event, 0, len(s.upstream)+len(s.external))
	events = append(events, s.upstream...)
	events = append(events, s.external...)
	s.mu.RUnlock()

	if userID == "" || s.cfg.Favourites == nil {
		return events, nil
	}

	proposals, err := s.cfg.Favourites.FavouriteIDs(ctx, userID, store.FavouriteProposal)
	if err != nil {
		return nil, fmt.Errorf("load proposal favourites: %w", err)
	}
	externals, err := s.cfg.Favourites.FavouriteIDs(ctx, userID, store.FavouriteExternal)
	if err != nil {
		return nil, fmt.Errorf("load external favourites: %w", err)
	}

	for i := range events {
		if events[i].Source == event.SourceExternal {
			events[i].IsFave = externals[-events[i].ID]
		} else {
			events[i].IsFave = proposals[events[i].ID]
		}
	}
	return events, nil
}

// UpdatedAt returns when the snapshot was last replaced.
func (s *Service) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// SetEvents replaces the snapshot directly, bypassing the fetchers.
func (s *Service) SetEvents(events []event.Event) {
	s.mu.Lock()
	s.upstream = events
	s.external = nil
	s.updatedAt = time.Now()
	s.mu.Unlock()
}
