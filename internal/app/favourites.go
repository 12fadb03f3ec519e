package app

import (
	"context"
)

// FavouritesUsecase defines the favourite toggle use case.
type FavouritesUsecase interface {
	// Apply toggles the favourite when state is nil, otherwise sets it.
	// Returns the resulting favourite state.
	Apply(ctx context.Context, userID, kind string, eventID int64, state *bool) (bool, error)
}

// FavouriteStore defines store operations needed by FavouritesService.
type FavouriteStore interface {
	ToggleFavourite(ctx context.Context, userID, kind string, eventID int64) (bool, error)
	SetFavourite(ctx context.Context, userID, kind string, eventID int64, state bool) (bool, error)
}

// FavouritesService implements FavouritesUsecase.
type FavouritesService struct {
	Store FavouriteStore
}

// Apply toggles or sets one favourite and returns the new state.
func (s *FavouritesService) Apply(ctx context.Context, userID, kind string, eventID int64, state *bool) (bool, error) {
	if state == nil {
		return s.Store.ToggleFavourite(ctx, userID, kind, eventID)
	}
	return s.Store.SetFavourite(ctx, userID, kind, eventID, *state)
}
