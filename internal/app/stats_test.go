package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campfield/lineup-companion/internal/store"
)

// stubStatsStore is a test double for StatsStore.
type stubStatsStore struct {
	stats    store.VolunteerStats
	urgent   []store.ShiftRow
	err      error
	gotLimit int
}

func (s *stubStatsStore) GetVolunteerStats(ctx context.Context, now time.Time) (store.VolunteerStats, error) {
	return s.stats, s.err
}

func (s *stubStatsStore) UrgentShifts(ctx context.Context, now time.Time, limit int) ([]store.ShiftRow, error) {
	s.gotLimit = limit
	return s.urgent, s.err
}

func TestStatsService_Overview(t *testing.T) {
	stub := &stubStatsStore{
		stats:  store.VolunteerStats{TotalShifts: 12, Understaffed: 3, Full: 2, LocalSignups: 5},
		urgent: []store.ShiftRow{{ID: 1, RoleName: "Bar"}},
	}
	svc := &StatsService{Store: stub}

	result, err := svc.Overview(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Overview error: %v", err)
	}

	if result.TotalShifts != 12 {
		t.Errorf("TotalShifts = %d, want 12", result.TotalShifts)
	}
	if result.Understaffed != 3 {
		t.Errorf("Understaffed = %d, want 3", result.Understaffed)
	}
	if len(result.Urgent) != 1 {
		t.Errorf("len(Urgent) = %d, want 1", len(result.Urgent))
	}
	if stub.gotLimit != urgentShiftLimit {
		t.Errorf("limit = %d, want %d", stub.gotLimit, urgentShiftLimit)
	}
}

func TestStatsService_Overview_Error(t *testing.T) {
	stub := &stubStatsStore{err: errors.New("database error")}
	svc := &StatsService{Store: stub}

	_, err := svc.Overview(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
