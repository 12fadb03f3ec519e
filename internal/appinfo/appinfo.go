// Package appinfo provides application identity constants.
// These are used across packages for consistent naming.
package appinfo

const (
	// AppName is the display name of the application.
	AppName = "Lineup Companion"

	// DirName is the directory name used for storing application data.
	// Location: %LOCALAPPDATA%/lineup/ (Windows) or ~/.config/lineup/ (other)
	DirName = "lineup"

	// MutexName is the Windows mutex name for single instance control.
	// "Local\" prefix means the mutex is scoped to the current user session,
	// not system-wide.
	MutexName = "Local\\lineup-companion"

	// LockFileName is the lock file name for single instance control.
	LockFileName = "lineup.lock"

	// ConfigFileName is the configuration file name.
	ConfigFileName = "config.json"

	// CalendarsFileName is the external calendar source list.
	CalendarsFileName = "calendars.yaml"

	// ShiftFiltersFileName is the persisted volunteer shift filter document.
	ShiftFiltersFileName = "shift-filters.json"

	// DatabaseFileName is the SQLite database file name.
	DatabaseFileName = "lineup.sqlite"

	// CalendarCacheDirName is the on-disk cache for fetched iCal feeds.
	CalendarCacheDirName = "ical-cache"
)
