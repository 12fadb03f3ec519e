package store

import (
	"context"
	"fmt"
)

// Role is a volunteer role from the catalogue.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpsertRole inserts or finds a role by name and returns its id.
func (s *Store) UpsertRole(ctx context.Context, name, description string) (int64, error) {
	const insert = `
	INSERT INTO roles (name, description) VALUES (?, ?)
	ON CONFLICT(name) DO UPDATE SET description = excluded.description
	`
	if _, err := s.db.ExecContext(ctx, insert, name, description); err != nil {
		return 0, fmt.Errorf("upsert role: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("query role id: %w", err)
	}
	return id, nil
}

// ListRoles returns the role catalogue ordered by name.
func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	const query = `SELECT id, name, description FROM roles ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// SetRoleInterest marks a user's interest in a role, used to seed the
// default shift filter selection.
func (s *Store) SetRoleInterest(ctx context.Context, userID string, roleID int64, interested, trained bool) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles WHERE id = ?`, roleID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("query role: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: id %d", ErrRoleNotFound, roleID)
	}

	const query = `
	INSERT INTO role_interest (user_id, role_id, interested, trained)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, role_id) DO UPDATE SET
		interested = excluded.interested,
		trained = excluded.trained
	`
	if _, err := s.db.ExecContext(ctx, query, userID, roleID, boolInt(interested), boolInt(trained)); err != nil {
		return fmt.Errorf("upsert role interest: %w", err)
	}
	return nil
}

// InterestedRoleIDs returns the ids of roles the user marked as
// interested.
func (s *Store) InterestedRoleIDs(ctx context.Context, userID string) ([]int64, error) {
	const query = `
	SELECT role_id FROM role_interest
	WHERE user_id = ? AND interested = 1
	ORDER BY role_id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query role interest: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan role id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
