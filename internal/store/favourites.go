package store

import (
	"context"
	"fmt"
	"time"
)

// Favourite kinds. Proposal favourites reference events from the
// organiser's database; external favourites reference calendar-feed
// events by their stable derived id.
const (
	FavouriteProposal = "proposal"
	FavouriteExternal = "external"
)

// ToggleFavourite flips the favourite state for one event and returns the
// new state.
func (s *Store) ToggleFavourite(ctx context.Context, userID, kind string, eventID int64) (bool, error) {
	current, err := s.IsFavourite(ctx, userID, kind, eventID)
	if err != nil {
		return false, err
	}
	return s.SetFavourite(ctx, userID, kind, eventID, !current)
}

// SetFavourite sets the favourite state for one event and returns the
// resulting state. Setting an already-set state is a no-op.
func (s *Store) SetFavourite(ctx context.Context, userID, kind string, eventID int64, state bool) (bool, error) {
	if state {
		const query = `
		INSERT INTO favourites (user_id, kind, event_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, kind, event_id) DO NOTHING
		`
		ts := time.Now().UTC().Format(TimeFormat)
		if _, err := s.db.ExecContext(ctx, query, userID, kind, eventID, ts); err != nil {
			return false, fmt.Errorf("insert favourite: %w", err)
		}
		return true, nil
	}

	const query = `DELETE FROM favourites WHERE user_id = ? AND kind = ? AND event_id = ?`
	if _, err := s.db.ExecContext(ctx, query, userID, kind, eventID); err != nil {
		return false, fmt.Errorf("delete favourite: %w", err)
	}
	return false, nil
}

// IsFavourite reports the favourite state for one event.
func (s *Store) IsFavourite(ctx context.Context, userID, kind string, eventID int64) (bool, error) {
	const query = `
	SELECT COUNT(*) FROM favourites
	WHERE user_id = ? AND kind = ? AND event_id = ?
	`
	var n int
	if err := s.db.QueryRowContext(ctx, query, userID, kind, eventID).Scan(&n); err != nil {
		return false, fmt.Errorf("query favourite: %w", err)
	}
	return n > 0, nil
}

// FavouriteIDs returns the set of favourited event ids of one kind for a
// user, used to decorate snapshot rows.
func (s *Store) FavouriteIDs(ctx context.Context, userID, kind string) (map[int64]bool, error) {
	const query = `SELECT event_id FROM favourites WHERE user_id = ? AND kind = ?`

	rows, err := s.db.QueryContext(ctx, query, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("query favourites: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favourite: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
