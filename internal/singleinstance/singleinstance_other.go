//go:build !windows

// Package singleinstance provides single instance control for the application.
package singleinstance

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/campfield/lineup-companion/internal/config"
)

// AcquireLock takes an advisory flock on a lock file in the data
// directory. The lock is released automatically by the OS if the process
// dies, so stale lock files never block a restart.
//
// Returns:
//   - release: function to call when shutting down (use with defer)
//   - ok: true if lock was acquired, false if another instance is running
//   - err: error if something went wrong
func AcquireLock() (release func(), ok bool, err error) {
	if _, err := config.EnsureDataDir(); err != nil {
		return nil, false, err
	}
	path, err := config.LockFilePath()
	if err != nil {
		return nil, false, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, false, err
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, false, nil
		}
		return nil, false, err
	}

	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, true, nil
}
