package lock

import "errors"

// Sentinel errors for lock acquisition. Both are wrapped with context by the
// functions that return them; match with errors.Is.
var (
	// ErrLockBusy means another process holds the lock in a mode that is
	// incompatible with the request. This is a normal, expected condition;
	// callers decide whether to retry or give up. Nothing in this package
	// retries internally.
	ErrLockBusy = errors.New("lock is held by another process")

	// ErrRosterCorrupt means the roster file exists but cannot be parsed.
	// A corrupt roster is never treated as empty: granting a lock over an
	// unreadable holder record could hand out exclusive access twice.
	ErrRosterCorrupt = errors.New("lock roster is corrupt")

	// ErrHostResolution means the local hostname could not be determined,
	// so no process identity exists to lock as. Fatal at startup.
	ErrHostResolution = errors.New("cannot resolve hostname")
)
