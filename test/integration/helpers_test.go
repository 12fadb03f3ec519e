//go:build integration

// Package integration provides end-to-end tests over a real store and a
// real HTTP server.
package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/campfield/lineup-companion/internal/api"
	"github.com/campfield/lineup-companion/internal/app"
	"github.com/campfield/lineup-companion/internal/clock"
	"github.com/campfield/lineup-companion/internal/event"
	"github.com/campfield/lineup-companion/internal/snapshot"
	"github.com/campfield/lineup-companion/internal/store"
)

// testNow is the frozen reference time for every integration test.
var testNow = time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

// TestApp holds all dependencies for integration tests.
type TestApp struct {
	Server   *httptest.Server
	Store    *store.Store
	Snapshot *snapshot.Service

	cleanup func()
}

// NewTestApp creates a test application with all dependencies wired up.
// Call Close() when done to release resources.
func NewTestApp(t *testing.T, opts ...TestAppOption) *TestApp {
	t.Helper()

	cfg := &testAppConfig{
		username: "admin",
		password: "password",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tmpDir, err := os.MkdirTemp("", "lineup-integration-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.sqlite")
	st, err := store.Open(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open store: %v", err)
	}

	snap := snapshot.New(snapshot.Config{
		Year:       2026,
		Location:   time.UTC,
		Failures:   st,
		Favourites: st,
	})

	health := app.HealthService{Version: "integration"}
	serverOpts := []api.ServerOption{
		api.WithScheduleUsecase(&app.ScheduleService{Source: snap}),
		api.WithShiftsUsecase(&app.ShiftsService{
			Store:       st,
			FiltersPath: filepath.Join(tmpDir, "filters.json"),
		}),
		api.WithFavouritesUsecase(&app.FavouritesService{Store: st}),
		api.WithMessagesUsecase(&app.MessagesService{Store: st}),
		api.WithStatsUsecase(&app.StatsService{Store: st}),
		api.WithClock(clock.At(testNow)),
		api.WithYear(2026),
	}
	if cfg.authEnabled {
		serverOpts = append(serverOpts, api.WithBasicAuth(cfg.username, cfg.password))
	}

	server := api.NewServer("127.0.0.1:0", health, serverOpts...)
	ts := httptest.NewServer(server.Handler())

	cleanup := func() {
		ts.Close()
		st.Close()
		os.RemoveAll(tmpDir)
	}

	return &TestApp{
		Server:   ts,
		Store:    st,
		Snapshot: snap,
		cleanup:  cleanup,
	}
}

// Close releases all resources.
func (a *TestApp) Close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// URL returns the base URL of the test server.
func (a *TestApp) URL() string {
	return a.Server.URL
}

// SeedEvents loads events into the schedule snapshot.
func (a *TestApp) SeedEvents(events ...event.Event) {
	a.Snapshot.SetEvents(events)
}

// SeedShifts imports a shift catalogue into the store.
func (a *TestApp) SeedShifts(t *testing.T, seeds ...store.ShiftSeed) {
	t.Helper()
	if err := a.Store.ImportShifts(context.Background(), seeds); err != nil {
		t.Fatalf("failed to import shifts: %v", err)
	}
}

// testAppConfig holds configuration for test app.
type testAppConfig struct {
	authEnabled bool
	username    string
	password    string
}

// TestAppOption configures a test app.
type TestAppOption func(*testAppConfig)

// WithAuth enables authentication for the test app.
func WithAuth(username, password string) TestAppOption {
	return func(cfg *testAppConfig) {
		cfg.authEnabled = true
		cfg.username = username
		cfg.password = password
	}
}
