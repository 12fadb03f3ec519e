package app

import (
	"context"
	"time"

	"github.com/campfield/lineup-companion/internal/store"
)

// StatsUsecase defines the volunteer staffing overview use case.
type StatsUsecase interface {
	Overview(ctx context.Context, now time.Time) (StatsResult, error)
}

// StatsStore defines store operations needed by StatsService.
type StatsStore interface {
	GetVolunteerStats(ctx context.Context, now time.Time) (store.VolunteerStats, error)
	UrgentShifts(ctx context.Context, now time.Time, limit int) ([]store.ShiftRow, error)
}

// StatsResult is the staffing overview payload.
type StatsResult struct {
	store.VolunteerStats
	Urgent []store.ShiftRow `json:"urgent"`
}

// urgentShiftLimit caps the understaffed-shift list in the overview.
const urgentShiftLimit = 10

// StatsService implements StatsUsecase.
type StatsService struct {
	Store StatsStore
}

// Overview returns aggregate staffing counts plus the most urgent
// understaffed shifts still to come.
func (s *StatsService) Overview(ctx context.Context, now time.Time) (StatsResult, error) {
	stats, err := s.Store.GetVolunteerStats(ctx, now)
	if err != nil {
		return StatsResult{}, err
	}

	urgent, err := s.Store.UrgentShifts(ctx, now, urgentShiftLimit)
	if err != nil {
		return StatsResult{}, err
	}

	return StatsResult{VolunteerStats: stats, Urgent: urgent}, nil
}
