package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ShiftRow is a volunteer shift as read from the database, with the
// signup count and the requesting user's signup state resolved.
type ShiftRow struct {
	ID           int64     `json:"id"`
	RoleID       int64     `json:"role_id"`
	RoleName     string    `json:"role"`
	Venue        string    `json:"venue"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	MinNeeded    int       `json:"min_needed"`
	MaxNeeded    int       `json:"max_needed"`
	CurrentCount int       `json:"current_count"`
	SignedUp     bool      `json:"signed_up"`
}

// ShiftSeed is a shift definition for import. BaseCount carries signup
// numbers that exist upstream and are not tracked as local entries.
type ShiftSeed struct {
	ID        int64
	RoleName  string
	Venue     string
	Start     time.Time
	End       time.Time
	MinNeeded int
	MaxNeeded int
	BaseCount int
}

// ImportShifts upserts the shift catalogue in one transaction, creating
// roles as needed. Local signup entries are preserved across imports.
func (s *Store) ImportShifts(ctx context.Context, seeds []ShiftSeed) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	const upsertRole = `
	INSERT INTO roles (name) VALUES (?)
	ON CONFLICT(name) DO NOTHING
	`
	const upsertShift = `
	INSERT INTO shifts (id, role_id, venue, start_at, end_at, min_needed, max_needed, base_count)
	VALUES (?, (SELECT id FROM roles WHERE name = ?), ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		role_id = excluded.role_id,
		venue = excluded.venue,
		start_at = excluded.start_at,
		end_at = excluded.end_at,
		min_needed = excluded.min_needed,
		max_needed = excluded.max_needed,
		base_count = excluded.base_count
	`

	for _, seed := range seeds {
		if _, err := tx.ExecContext(ctx, upsertRole, seed.RoleName); err != nil {
			return fmt.Errorf("upsert role %q: %w", seed.RoleName, err)
		}
		_, err := tx.ExecContext(ctx, upsertShift,
			seed.ID,
			seed.RoleName,
			seed.Venue,
			seed.Start.UTC().Format(TimeFormat),
			seed.End.UTC().Format(TimeFormat),
			seed.MinNeeded,
			seed.MaxNeeded,
			seed.BaseCount,
		)
		if err != nil {
			return fmt.Errorf("upsert shift %d: %w", seed.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

const shiftSelect = `
SELECT
	sh.id, sh.role_id, r.name, sh.venue, sh.start_at, sh.end_at,
	sh.min_needed, sh.max_needed,
	sh.base_count + (SELECT COUNT(*) FROM shift_entries se WHERE se.shift_id = sh.id),
	EXISTS (SELECT 1 FROM shift_entries se WHERE se.shift_id = sh.id AND se.user_id = ?)
FROM shifts sh
JOIN roles r ON r.id = sh.role_id
`

// ListShifts returns every shift ordered by start time, with counts and
// the given user's signup state.
func (s *Store) ListShifts(ctx context.Context, userID string) ([]ShiftRow, error) {
	rows, err := s.db.QueryContext(ctx, shiftSelect+` ORDER BY sh.start_at, sh.venue, r.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []ShiftRow
	for rows.Next() {
		row, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, row)
	}
	return shifts, rows.Err()
}

// GetShift returns one shift by id.
func (s *Store) GetShift(ctx context.Context, shiftID int64, userID string) (ShiftRow, error) {
	row := s.db.QueryRowContext(ctx, shiftSelect+` WHERE sh.id = ?`, userID, shiftID)
	sh, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ShiftRow{}, fmt.Errorf("%w: id %d", ErrShiftNotFound, shiftID)
	}
	return sh, err
}

// ToggleSignup flips the user's signup state for a shift inside one
// transaction and returns the operation performed, "add" or "delete".
// Signing up for a shift at its maximum returns ErrShiftFull; an unknown
// shift id returns ErrShiftNotFound.
func (s *Store) ToggleSignup(ctx context.Context, shiftID int64, userID string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin signup: %w", err)
	}
	defer tx.Rollback()

	var maxNeeded, count int
	err = tx.QueryRowContext(ctx, `
	SELECT max_needed, base_count + (SELECT COUNT(*) FROM shift_entries se WHERE se.shift_id = shifts.id)
	FROM shifts WHERE id = ?
	`, shiftID).Scan(&maxNeeded, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: id %d", ErrShiftNotFound, shiftID)
	}
	if err != nil {
		return "", fmt.Errorf("query shift: %w", err)
	}

	var signedUp int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shift_entries WHERE shift_id = ? AND user_id = ?`,
		shiftID, userID,
	).Scan(&signedUp)
	if err != nil {
		return "", fmt.Errorf("query signup: %w", err)
	}

	var op string
	if signedUp > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM shift_entries WHERE shift_id = ? AND user_id = ?`,
			shiftID, userID,
		); err != nil {
			return "", fmt.Errorf("delete signup: %w", err)
		}
		op = "delete"
	} else {
		if maxNeeded > 0 && count >= maxNeeded {
			return "", fmt.Errorf("%w: id %d", ErrShiftFull, shiftID)
		}
		ts := time.Now().UTC().Format(TimeFormat)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shift_entries (shift_id, user_id, created_at) VALUES (?, ?, ?)`,
			shiftID, userID, ts,
		); err != nil {
			return "", fmt.Errorf("insert signup: %w", err)
		}
		op = "add"
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit signup: %w", err)
	}
	return op, nil
}

// OverlappingSignups returns the user's other signed-up shifts that
// overlap the given shift in time, used to attach a warning to signup
// responses.
func (s *Store) OverlappingSignups(ctx context.Context, shiftID int64, userID string) ([]ShiftRow, error) {
	const query = shiftSelect + `
	JOIN shift_entries mine ON mine.shift_id = sh.id AND mine.user_id = ?
	WHERE sh.id != ?
	  AND sh.start_at < (SELECT end_at FROM shifts WHERE id = ?)
	  AND sh.end_at > (SELECT start_at FROM shifts WHERE id = ?)
	ORDER BY sh.start_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID, userID, shiftID, shiftID, shiftID)
	if err != nil {
		return nil, fmt.Errorf("query overlapping signups: %w", err)
	}
	defer rows.Close()

	var shifts []ShiftRow
	for rows.Next() {
		row, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, row)
	}
	return shifts, rows.Err()
}
