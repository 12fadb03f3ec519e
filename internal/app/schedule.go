package app

import (
	"context"

	"github.com/campfield/lineup-companion/internal/event"
	"github.com/campfield/lineup-companion/internal/schedule"
)

// ScheduleUsecase defines the schedule view use case.
type ScheduleUsecase interface {
	BuildView(ctx context.Context, userID string, opts schedule.Options) (*schedule.View, error)
	RawEvents(ctx context.Context, userID string) ([]event.Raw, error)
}

// EventSource supplies the current schedule snapshot, decorated with a
// user's favourite flags.
type EventSource interface {
	Events(ctx context.Context, userID string) ([]event.Event, error)
}

// ScheduleService implements ScheduleUsecase.
type ScheduleService struct {
	Source EventSource
}

// BuildView runs the filtering and bucketing engine over the current
// snapshot.
func (s *ScheduleService) BuildView(ctx context.Context, userID string, opts schedule.Options) (*schedule.View, error) {
	events, err := s.Source.Events(ctx, userID)
	if err != nil {
		return nil, err
	}
	return schedule.Build(events, opts), nil
}

// RawEvents returns the snapshot in the upstream wire row format.
func (s *ScheduleService) RawEvents(ctx context.Context, userID string) ([]event.Raw, error) {
	events, err := s.Source.Events(ctx, userID)
	if err != nil {
		return nil, err
	}

	raws := make([]event.Raw, 0, len(events))
	for _, e := range events {
		raws = append(raws, event.ToRaw(e))
	}
	return raws, nil
}
