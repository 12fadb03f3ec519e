package store

import (
	"fmt"
	"time"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanShift scans one row of the shared shift select.
func scanShift(sc scanner) (ShiftRow, error) {
	var (
		row      ShiftRow
		startAt  string
		endAt    string
		signedUp int
	)
	err := sc.Scan(
		&row.ID, &row.RoleID, &row.RoleName, &row.Venue, &startAt, &endAt,
		&row.MinNeeded, &row.MaxNeeded, &row.CurrentCount, &signedUp,
	)
	if err != nil {
		return ShiftRow{}, err
	}

	if row.Start, err = time.Parse(TimeFormat, startAt); err != nil {
		return ShiftRow{}, fmt.Errorf("parse start_at %q: %w", startAt, err)
	}
	if row.End, err = time.Parse(TimeFormat, endAt); err != nil {
		return ShiftRow{}, fmt.Errorf("parse end_at %q: %w", endAt, err)
	}
	row.SignedUp = signedUp > 0

	return row, nil
}
