package store

import (
	"context"
	"fmt"
	"time"
)

// Message is a site-wide notice shown while its visibility window is open.
type Message struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// InsertMessage creates a notice visible between from and until.
func (s *Store) InsertMessage(ctx context.Context, body string, from, until time.Time) (int64, error) {
	const query = `
	INSERT INTO messages (body, visible_from, visible_until)
	VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		body,
		from.UTC().Format(TimeFormat),
		until.UTC().Format(TimeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// VisibleMessages returns notices whose window contains now, oldest first.
func (s *Store) VisibleMessages(ctx context.Context, now time.Time) ([]Message, error) {
	const query = `
	SELECT id, body FROM messages
	WHERE visible_from <= ? AND visible_until > ?
	ORDER BY id
	`

	ts := now.UTC().Format(TimeFormat)
	rows, err := s.db.QueryContext(ctx, query, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Body); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
