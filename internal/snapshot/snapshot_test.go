package snapshot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campfield/lineup-companion/internal/event"
	"github.com/campfield/lineup-companion/internal/store"
)

type fakeFailures struct {
	rows []string
	errs []string
}

func (f *fakeFailures) InsertParseFailure(_ context.Context, rawRow, errorMsg string) (bool, error) {
	f.rows = append(f.rows, rawRow)
	f.errs = append(f.errs, errorMsg)
	return true, nil
}

type fakeFavourites struct {
	byKind map[string]map[int64]bool
}

func (f *fakeFavourites) FavouriteIDs(_ context.Context, _, kind string) (map[int64]bool, error) {
	return f.byKind[kind], nil
}

const upstreamBody = `[
	{"id": 1, "title": "Opening", "venue": "Stage A", "type": "talk",
	 "start_date": "2026-05-29 10:00:00", "end_date": "2026-05-29 11:00:00",
	 "source": "database", "may_record": true},
	{"id": 0, "title": "Broken", "venue": "Stage A", "type": "talk",
	 "start_date": "2026-05-29 10:00:00", "end_date": "2026-05-29 11:00:00",
	 "source": "database"},
	{"id": 2, "title": "Workshop", "venue": "Workshop 1", "type": "workshop",
	 "start_date": "2026-05-29 12:00:00", "end_date": "bogus",
	 "source": "database"}
]`

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule/2026.json", r.URL.Path)
		fmt.Fprint(w, upstreamBody)
	}))
	defer srv.Close()

	failures := &fakeFailures{}
	svc := New(Config{
		UpstreamURL: srv.URL,
		Year:        2026,
		Location:    time.UTC,
		Failures:    failures,
	})

	require.NoError(t, svc.Refresh(context.Background()))

	events, err := svc.Events(context.Background(), "")
	require.NoError(t, err)

	// The two malformed rows are dropped and recorded, not fatal.
	require.Len(t, events, 1)
	assert.Equal(t, int64(1), events[0].ID)
	assert.True(t, events[0].Official)
	assert.Len(t, failures.rows, 2)
	assert.False(t, svc.UpdatedAt().IsZero())
}

func TestRefresh_UpstreamErrorKeepsSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := New(Config{UpstreamURL: srv.URL, Year: 2026})
	svc.SetEvents([]event.Event{{ID: 42, Title: "Kept"}})

	err := svc.Refresh(context.Background())
	require.Error(t, err)

	events, err := svc.Events(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(42), events[0].ID)
}

func TestRefresh_NoUpstreamConfigured(t *testing.T) {
	svc := New(Config{Year: 2026})
	require.NoError(t, svc.Refresh(context.Background()))

	events, err := svc.Events(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEvents_FavouriteDecoration(t *testing.T) {
	svc := New(Config{
		Favourites: &fakeFavourites{byKind: map[string]map[int64]bool{
			store.FavouriteProposal: {1: true},
			store.FavouriteExternal: {77: true},
		}},
	})
	svc.SetEvents([]event.Event{
		{ID: 1, Source: event.SourceDatabase},
		{ID: 2, Source: event.SourceDatabase},
		{ID: -77, Source: event.SourceExternal},
	})

	events, err := svc.Events(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].IsFave)
	assert.False(t, events[1].IsFave)
	assert.True(t, events[2].IsFave, "external favourites are keyed by absolute id")

	// An anonymous read stays undecorated.
	events, err = svc.Events(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, events[0].IsFave)
}

func TestEvents_ReturnsCopy(t *testing.T) {
	svc := New(Config{})
	svc.SetEvents([]event.Event{{ID: 1, Title: "Original"}})

	events, err := svc.Events(context.Background(), "")
	require.NoError(t, err)
	events[0].Title = "Mutated"

	again, err := svc.Events(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Original", again[0].Title)
}
