package ical

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:one@example.org
SUMMARY:Blacksmithing demo
DESCRIPTION:Hot metal
DTSTART:20260529T100000Z
DTEND:20260529T110000Z
END:VEVENT
BEGIN:VEVENT
UID:broken@example.org
DTSTART:20260529T100000Z
DTEND:20260529T110000Z
END:VEVENT
BEGIN:VEVENT
UID:daily@example.org
SUMMARY:Morning yoga
DTSTART:20260529T080000Z
DTEND:20260529T090000Z
RRULE:FREQ=DAILY;COUNT=3
END:VEVENT
END:VCALENDAR
`

var testSource = Source{Name: "village-feed", URL: "https://example.org/feed.ics", Venue: "Village Hall"}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendars.yaml")

	content := `
- name: village-feed
  url: https://example.org/feed.ics
  venue: Village Hall
  priority: 5
- name: old-feed
  url: https://example.org/old.ics
  venue: Old Tent
  disabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "village-feed", sources[0].Name)
	assert.Equal(t, 5, sources[0].Priority)
	assert.True(t, sources[1].Disabled)

	enabled := Enabled(sources)
	require.Len(t, enabled, 1)
	assert.Equal(t, "village-feed", enabled[0].Name)
}

func TestLoadSources_Missing(t *testing.T) {
	sources, err := LoadSources("/nonexistent/calendars.yaml")
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestLoadSources_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendars.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: no-url\n  venue: Somewhere\n"), 0600))

	_, err := LoadSources(path)
	require.Error(t, err)
}

func TestSourcesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendars.yaml")

	want := []Source{testSource}
	require.NoError(t, SaveSources(path, want))

	got, err := LoadSources(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParse(t *testing.T) {
	entries, err := Parse(testSource, []byte(sampleFeed), nil)
	require.NoError(t, err)

	// The summary-less event is skipped, not fatal.
	require.Len(t, entries, 2)
	assert.Equal(t, "Blacksmithing demo", entries[0].Summary)
	assert.Equal(t, "one@example.org", entries[0].UID)
	assert.Equal(t, "Hot metal", entries[0].Description)
	assert.Equal(t, "FREQ=DAILY;COUNT=3", entries[1].RawRRule)
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse(testSource, []byte("not a calendar"), nil)
	require.Error(t, err)

	_, err = Parse(testSource, nil, nil)
	require.Error(t, err)
}

func TestExpand(t *testing.T) {
	entries, err := Parse(testSource, []byte(sampleFeed), nil)
	require.NoError(t, err)

	window := Window{
		Start: time.Date(2026, 5, 29, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	events := Expand(entries, window, time.UTC, nil)

	// One single event plus three daily occurrences.
	require.Len(t, events, 4)

	for _, e := range events {
		assert.Negative(t, e.ID)
		assert.Equal(t, "external", e.Source)
		assert.Equal(t, "Village Hall", e.Venue)
		assert.False(t, e.Official)
	}
}

func TestExpand_WindowClipsOccurrences(t *testing.T) {
	entries, err := Parse(testSource, []byte(sampleFeed), nil)
	require.NoError(t, err)

	// Window covers only the first day.
	window := Window{
		Start: time.Date(2026, 5, 29, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC),
	}
	events := Expand(entries, window, time.UTC, nil)
	require.Len(t, events, 2)
}

func TestExternalID(t *testing.T) {
	start := time.Date(2026, 5, 29, 10, 0, 0, 0, time.UTC)

	a := ExternalID("village-feed", "one@example.org", start)
	b := ExternalID("village-feed", "one@example.org", start)
	assert.Equal(t, a, b, "id must be stable")
	assert.Negative(t, a)

	c := ExternalID("village-feed", "one@example.org", start.Add(time.Hour))
	assert.NotEqual(t, a, c, "occurrences must get distinct ids")

	d := ExternalID("other-feed", "one@example.org", start)
	assert.NotEqual(t, a, d, "sources must get distinct ids")
}

func TestFetchOne_CachesAndRevalidates(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), nil)
	src := Source{Name: "test", URL: srv.URL, Venue: "Tent"}

	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, []byte(sampleFeed), res.Body)

	res, err = f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, []byte(sampleFeed), res.Body)
	assert.Equal(t, 2, requests)
}

func TestFetchOne_FallsBackToCacheOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(sampleFeed))
	}))

	f := NewFetcher(t.TempDir(), nil)
	src := Source{Name: "test", URL: srv.URL, Venue: "Tent"}

	_, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	// Kill the server; the cached body must still be served.
	srv.Close()

	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, []byte(sampleFeed), res.Body)
}
