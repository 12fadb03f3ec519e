package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// VolunteerStats summarises staffing across upcoming shifts.
type VolunteerStats struct {
	TotalShifts  int64 `json:"total_shifts"`
	Understaffed int64 `json:"understaffed"`
	Full         int64 `json:"full"`
	LocalSignups int64 `json:"local_signups"`
}

// GetVolunteerStats returns staffing counts over shifts that have not
// ended at the reference time.
func (s *Store) GetVolunteerStats(ctx context.Context, now time.Time) (VolunteerStats, error) {
	const query = `
	SELECT
		COUNT(*),
		SUM(CASE WHEN base_count + entries < min_needed THEN 1 ELSE 0 END),
		SUM(CASE WHEN max_needed > 0 AND base_count + entries >= max_needed THEN 1 ELSE 0 END)
	FROM (
		SELECT sh.min_needed, sh.max_needed, sh.base_count,
			(SELECT COUNT(*) FROM shift_entries se WHERE se.shift_id = sh.id) AS entries
		FROM shifts sh
		WHERE sh.end_at > ?
	)
	`

	var (
		stats        VolunteerStats
		understaffed sql.NullInt64
		full         sql.NullInt64
	)
	ts := now.UTC().Format(TimeFormat)
	err := s.db.QueryRowContext(ctx, query, ts).Scan(&stats.TotalShifts, &understaffed, &full)
	if err != nil {
		return VolunteerStats{}, fmt.Errorf("query volunteer stats: %w", err)
	}
	// SUM over zero rows is NULL.
	stats.Understaffed = understaffed.Int64
	stats.Full = full.Int64

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shift_entries`).Scan(&stats.LocalSignups)
	if err != nil {
		return VolunteerStats{}, fmt.Errorf("count signups: %w", err)
	}

	return stats, nil
}

// UrgentShifts returns upcoming understaffed shifts ordered by start
// time, limited to limit rows.
func (s *Store) UrgentShifts(ctx context.Context, now time.Time, limit int) ([]ShiftRow, error) {
	if limit <= 0 {
		limit = 10
	}

	const query = shiftSelect + `
	WHERE sh.end_at > ?
	  AND sh.base_count + (SELECT COUNT(*) FROM shift_entries se WHERE se.shift_id = sh.id) < sh.min_needed
	ORDER BY sh.start_at
	LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, "", now.UTC().Format(TimeFormat), limit)
	if err != nil {
		return nil, fmt.Errorf("query urgent shifts: %w", err)
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
