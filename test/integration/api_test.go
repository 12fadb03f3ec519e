//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/campfield/lineup-companion/internal/event"
	"github.com/campfield/lineup-companion/internal/store"
)

func sampleEvent(id int64, venue string, start time.Time) event.Event {
	return event.Event{
		ID:                id,
		Title:             "Talk " + venue,
		Venue:             venue,
		Type:              "talk",
		HumanReadableType: "Talk",
		StartTime:         start,
		EndTime:           start.Add(time.Hour),
		Source:            event.SourceDatabase,
		Official:          true,
		AgeRange:          event.AgeRangeUnspecified,
	}
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	app := NewTestApp(t)
	defer app.Close()

	var result map[string]any
	resp := getJSON(t, app.URL()+"/api/v1/health", &result)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", result["status"])
	}
}

func TestScheduleFlow(t *testing.T) {
	app := NewTestApp(t)
	defer app.Close()

	app.SeedEvents(
		sampleEvent(1, "Stage A", testNow.Add(time.Hour)),
		sampleEvent(2, "Workshop 1", testNow.Add(2*time.Hour)),
	)

	var view map[string]any
	resp := getJSON(t, app.URL()+"/api/schedule", &view)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	hours, ok := view["hours"].([]any)
	if !ok || len(hours) != 2 {
		t.Errorf("expected 2 hours, got %v", view["hours"])
	}
	venues, ok := view["venues"].([]any)
	if !ok || len(venues) != 2 {
		t.Fatalf("expected 2 venues, got %v", view["venues"])
	}
	// Stage venues sort before workshops
	first := venues[0].(map[string]any)
	if first["name"] != "Stage A" {
		t.Errorf("expected Stage A first, got %v", first["name"])
	}

	// Restricting to one venue keeps both facets but one bucket
	resp = getJSON(t, app.URL()+"/api/schedule?venue=Workshop+1", &view)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if hours := view["hours"].([]any); len(hours) != 1 {
		t.Errorf("expected 1 hour with venue filter, got %d", len(hours))
	}
	if venues := view["venues"].([]any); len(venues) != 2 {
		t.Errorf("facets should ignore selections, got %d venues", len(venues))
	}
}

func TestYearSnapshotEndpoint(t *testing.T) {
	app := NewTestApp(t)
	defer app.Close()

	app.SeedEvents(sampleEvent(1, "Stage A", testNow.Add(time.Hour)))

	var rows []map[string]any
	resp := getJSON(t, app.URL()+"/schedule/2026.json", &rows)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["start_date"] != "2026-08-28 10:00:00" {
		t.Errorf("start_date = %v", rows[0]["start_date"])
	}

	resp = getJSON(t, app.URL()+"/schedule/1999.json", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for wrong year, got %d", resp.StatusCode)
	}
}

func TestFavouriteRoundTrip(t *testing.T) {
	app := NewTestApp(t)
	defer app.Close()

	app.SeedEvents(sampleEvent(1, "Stage A", testNow.Add(time.Hour)))

	put := func(path string) map[string]any {
		req, err := http.NewRequest(http.MethodPut, app.URL()+path, nil)
		if err != nil {
			t.Fatalf("failed to build request: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("failed to make request: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		var result map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}
		return result
	}

	if result := put("/api/proposal/1/favourite"); result["is_favourite"] != true {
		t.Errorf("first toggle should favourite, got %v", result)
	}

	// The decorated snapshot reflects it
	var rows []map[string]any
	getJSON(t, app.URL()+"/schedule/2026.json", &rows)
	if rows[0]["is_fave"] != true {
		t.Error("snapshot row should be favourited")
	}

	if result := put("/api/proposal/1/favourite"); result["is_favourite"] != false {
		t.Errorf("second toggle should unfavourite, got %v", result)
	}
}

func TestVolunteerSignupFlow(t *testing.T) {
	app := NewTestApp(t)
	defer app.Close()

	app.SeedShifts(t,
		store.ShiftSeed{
			ID: 1, RoleName: "Bar", Venue: "Bar 1",
			Start: testNow.Add(time.Hour), End: testNow.Add(3 * time.Hour),
			MinNeeded: 1, MaxNeeded: 2,
		},
		store.ShiftSeed{
			ID: 2, RoleName: "Gate", Venue: "Gate A",
			Start: testNow.Add(2 * time.Hour), End: testNow.Add(4 * time.Hour),
			MinNeeded: 1, MaxNeeded: 1,
		},
	)

	post := func(path string) (int, map[string]any) {
		resp, err := http.Post(app.URL()+path, "application/json", nil)
		if err != nil {
			t.Fatalf("failed to make request: %v", err)
		}
		defer resp.Body.Close()
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return resp.StatusCode, result
	}

	code, result := post("/api/volunteer/shift/1")
	if code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%v)", code, result)
	}
	if result["operation"] != "add" {
		t.Errorf("operation = %v, want add", result["operation"])
	}
	if result["message"] != "Signed up for Bar shift" {
		t.Errorf("message = %v", result["message"])
	}

	// Overlapping second signup carries a warning
	code, result = post("/api/volunteer/shift/2")
	if code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", code)
	}
	if _, ok := result["warning"]; !ok {
		t.Error("expected overlap warning")
	}

	// Toggle back off
	code, result = post("/api/volunteer/shift/1")
	if code != http.StatusOK || result["operation"] != "delete" {
		t.Errorf("expected delete, got %d %v", code, result)
	}

	// Unknown shift
	code, _ = post("/api/volunteer/shift/999")
	if code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown shift, got %d", code)
	}

	// The board reflects local signups
	var board map[string]any
	getJSON(t, app.URL()+"/api/volunteer/shifts", &board)
	days := board["days"].([]any)
	if len(days) != 1 || days[0] != "fri" {
		t.Errorf("days = %v", days)
	}
}

func TestVolunteerStats(t *testing.T) {
	app := NewTestApp(t)
	defer app.Close()

	app.SeedShifts(t,
		store.ShiftSeed{
			ID: 1, RoleName: "Bar", Venue: "Bar 1",
			Start: testNow.Add(time.Hour), End: testNow.Add(2 * time.Hour),
			MinNeeded: 2, MaxNeeded: 3,
		},
	)

	var stats map[string]any
	resp := getJSON(t, app.URL()+"/api/volunteer/stats", &stats)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if stats["total_shifts"].(float64) != 1 {
		t.Errorf("total_shifts = %v", stats["total_shifts"])
	}
	if stats["understaffed"].(float64) != 1 {
		t.Errorf("understaffed = %v", stats["understaffed"])
	}
	urgent := stats["urgent"].([]any)
	if len(urgent) != 1 {
		t.Errorf("urgent = %v", urgent)
	}
}

func TestMessagesEndpoint(t *testing.T) {
	app := NewTestApp(t)
	defer app.Close()

	if _, err := app.Store.InsertMessage(
		t.Context(), "Gates open at noon",
		testNow.Add(-time.Hour), testNow.Add(time.Hour),
	); err != nil {
		t.Fatalf("failed to insert message: %v", err)
	}
	if _, err := app.Store.InsertMessage(
		t.Context(), "Expired notice",
		testNow.Add(-3*time.Hour), testNow.Add(-2*time.Hour),
	); err != nil {
		t.Fatalf("failed to insert message: %v", err)
	}

	var messages []map[string]any
	resp := getJSON(t, app.URL()+"/api/schedule_messages", &messages)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if len(messages) != 1 || messages[0]["body"] != "Gates open at noon" {
		t.Errorf("messages = %v", messages)
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := NewTestApp(t)
	defer app.Close()

	resp, err := http.Get(app.URL() + "/api/v1/health")
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for name, expected := range headers {
		if actual := resp.Header.Get(name); actual != expected {
			t.Errorf("header %s: expected %q, got %q", name, expected, actual)
		}
	}
}
