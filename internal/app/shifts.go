package app

import (
	"context"
	"fmt"
	"time"

	"github.com/campfield/lineup-companion/internal/config"
	"github.com/campfield/lineup-companion/internal/shiftboard"
	"github.com/campfield/lineup-companion/internal/store"
)

// ShiftsUsecase defines the volunteer shift board use cases.
type ShiftsUsecase interface {
	Map(ctx context.Context, userID string) (map[string]map[string][]shiftboard.Shift, error)
	Days(ctx context.Context, userID string) ([]string, error)
	Render(ctx context.Context, userID, day string, f shiftboard.Filters, now time.Time) ([]shiftboard.HourGroup, error)
	SignUp(ctx context.Context, shiftID int64, userID, overrideUser string) (SignupResult, error)
	Roles(ctx context.Context) ([]store.Role, error)
	Filters(ctx context.Context, userID string) (shiftboard.Filters, error)
	SaveFilters(ctx context.Context, f shiftboard.Filters) error
}

// ShiftStore defines store operations needed by ShiftsService.
type ShiftStore interface {
	ListShifts(ctx context.Context, userID string) ([]store.ShiftRow, error)
	ToggleSignup(ctx context.Context, shiftID int64, userID string) (string, error)
	OverlappingSignups(ctx context.Context, shiftID int64, userID string) ([]store.ShiftRow, error)
	ListRoles(ctx context.Context) ([]store.Role, error)
	InterestedRoleIDs(ctx context.Context, userID string) ([]int64, error)
}

// SignupResult is the outcome of a signup toggle.
type SignupResult struct {
	Operation string           `json:"operation"`
	Message   string           `json:"message"`
	Warning   string           `json:"warning,omitempty"`
	User      string           `json:"user,omitempty"`
	Shift     shiftboard.Shift `json:"shift"`
}

// ShiftsService implements ShiftsUsecase.
type ShiftsService struct {
	Store       ShiftStore
	FiltersPath string
}

// boardFor builds the day/hour board from the store for one viewer.
func (s *ShiftsService) boardFor(ctx context.Context, userID string) (*shiftboard.Board, error) {
	rows, err := s.Store.ListShifts(ctx, userID)
	if err != nil {
		return nil, err
	}

	shifts := make([]shiftboard.Shift, 0, len(rows))
	for _, row := range rows {
		shifts = append(shifts, toShift(row))
	}

	board := shiftboard.NewBoard()
	board.Replace(shifts)
	return board, nil
}

func toShift(row store.ShiftRow) shiftboard.Shift {
	return shiftboard.Shift{
		ID:           row.ID,
		RoleID:       row.RoleID,
		RoleName:     row.RoleName,
		Venue:        row.Venue,
		Start:        row.Start,
		End:          row.End,
		MinNeeded:    row.MinNeeded,
		MaxNeeded:    row.MaxNeeded,
		CurrentCount: row.CurrentCount,
		IsUserShift:  row.SignedUp,
		SignUpURL:    fmt.Sprintf("/api/volunteer/shift/%d", row.ID),
	}
}

// Map returns the full {day -> hour -> [shift]} structure.
func (s *ShiftsService) Map(ctx context.Context, userID string) (map[string]map[string][]shiftboard.Shift, error) {
	board, err := s.boardFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return board.Snapshot(), nil
}

// Days returns the board's day keys in chronological order.
func (s *ShiftsService) Days(ctx context.Context, userID string) ([]string, error) {
	board, err := s.boardFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return board.Days(), nil
}

// Render returns the filtered board for one day.
func (s *ShiftsService) Render(ctx context.Context, userID, day string, f shiftboard.Filters, now time.Time) ([]shiftboard.HourGroup, error) {
	board, err := s.boardFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return board.Render(day, f, now), nil
}

// SignUp toggles a signup. With overrideUser set the action applies to
// that user on their behalf and the viewer's own board state is left
// untouched. The store toggle is authoritative; the in-memory board is
// mutated afterwards to produce the post-signup shift for the response.
func (s *ShiftsService) SignUp(ctx context.Context, shiftID int64, userID, overrideUser string) (SignupResult, error) {
	target := userID
	override := overrideUser != ""
	if override {
		target = overrideUser
	}

	board, err := s.boardFor(ctx, userID)
	if err != nil {
		return SignupResult{}, err
	}

	op, err := s.Store.ToggleSignup(ctx, shiftID, target)
	if err != nil {
		return SignupResult{}, err
	}

	board.ApplySignupResult(shiftID, op, override)
	updated, _ := board.Lookup(shiftID)

	result := SignupResult{
		Operation: op,
		Shift:     updated,
	}
	switch op {
	case shiftboard.OperationAdd:
		result.Message = fmt.Sprintf("Signed up for %s shift", updated.RoleName)
	case shiftboard.OperationDelete:
		result.Message = fmt.Sprintf("Cancelled %s shift", updated.RoleName)
	}
	if override {
		result.User = overrideUser
	}

	if op == shiftboard.OperationAdd {
		overlaps, err := s.Store.OverlappingSignups(ctx, shiftID, target)
		if err != nil {
			return SignupResult{}, err
		}
		if len(overlaps) > 0 {
			result.Warning = fmt.Sprintf("This shift overlaps %d other shift(s) you are signed up for", len(overlaps))
		}
	}

	return result, nil
}

// Roles returns the role catalogue, for the role filter selector.
func (s *ShiftsService) Roles(ctx context.Context) ([]store.Role, error) {
	return s.Store.ListRoles(ctx)
}

// Filters loads the persisted filter selection, seeding role ids from
// the viewer's interested roles on first use.
func (s *ShiftsService) Filters(ctx context.Context, userID string) (shiftboard.Filters, error) {
	interested, err := s.Store.InterestedRoleIDs(ctx, userID)
	if err != nil {
		return shiftboard.Filters{}, err
	}

	defaults := shiftboard.Filters{RoleIDs: interested}
	f, _ := config.LoadShiftFilters(s.FiltersPath, defaults)
	return f, nil
}

// SaveFilters persists the filter selection as one document.
func (s *ShiftsService) SaveFilters(_ context.Context, f shiftboard.Filters) error {
	return config.SaveShiftFilters(s.FiltersPath, f)
}
