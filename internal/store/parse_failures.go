package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ParseFailureRetention is how long dropped-row records are kept.
const ParseFailureRetention = 14 * 24 * time.Hour

// InsertParseFailure records a schedule row that was dropped during a
// rebuild. Returns true if the failure was recorded, false if the same
// row content was already present.
// Uses ON CONFLICT(dedupe_key) DO NOTHING for deduplication.
func (s *Store) InsertParseFailure(ctx context.Context, rawRow, errorMsg string) (inserted bool, err error) {
	if rawRow == "" {
		return false, fmt.Errorf("raw_row is required")
	}

	const query = `
	INSERT INTO parse_failures (ts, raw_row, error_msg, dedupe_key)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(dedupe_key) DO NOTHING
	`

	dedupeKey := sha256Hex(rawRow)
	ts := time.Now().UTC().Format(TimeFormat)

	result, err := s.db.ExecContext(ctx, query, ts, rawRow, errorMsg, dedupeKey)
	if err != nil {
		return false, fmt.Errorf("insert parse failure: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// PruneParseFailures deletes recorded failures older than the retention
// window and returns the number removed.
func (s *Store) PruneParseFailures(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-ParseFailureRetention).UTC().Format(TimeFormat)

	result, err := s.db.ExecContext(ctx, `DELETE FROM parse_failures WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune parse failures: %w", err)
	}
	return result.RowsAffected()
}

// CountParseFailures returns the number of recorded failures.
func (s *Store) CountParseFailures(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parse_failures`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count parse failures: %w", err)
	}
	return n, nil
}

// sha256Hex returns the SHA256 hash of the input string as a hex string.
func sha256Hex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
