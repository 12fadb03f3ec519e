package store

import "errors"

// Sentinel errors for the store package.
var (
	// ErrShiftNotFound is returned when a shift id does not exist.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrShiftFull is returned when signing up for a shift already at its maximum.
	ErrShiftFull = errors.New("shift is full")

	// ErrRoleNotFound is returned when a role id does not exist.
	ErrRoleNotFound = errors.New("role not found")
)
