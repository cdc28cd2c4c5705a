// Package lock coordinates shared and exclusive access to an on-disk
// repository among unrelated processes, using nothing but filesystem
// primitives.
//
// Two pieces cooperate. A roster file records who holds the lock and in what
// mode; it is only ever mutated under a short-lived mutation guard so that
// read-modify-write cycles cannot interleave across processes. For exclusive
// sessions a second, long-held guard directory additionally marks the session
// for the whole of its duration, giving other processes a fast busy check
// that survives the holder's crash visibly (as a stale directory).
//
// Nothing here waits: every acquisition succeeds or fails immediately, and
// retry policy belongs to the caller.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
)

// State of a Lock session.
type State int

const (
	// StateUnlocked is the initial and terminal state.
	StateUnlocked State = iota
	// StateShared means this session holds shared (read) access.
	StateShared
	// StateExclusive means this session holds exclusive access.
	StateExclusive
)

// String returns a short name for the state.
func (s State) String() string {
	switch s {
	case StateShared:
		return "shared"
	case StateExclusive:
		return "exclusive"
	default:
		return "unlocked"
	}
}

// Lock is a single process's session on a repository lock. It is a state
// machine over Unlocked, Shared and Exclusive; acquisition is only legal from
// Unlocked, and calling an acquire method on an already-locked session is a
// caller bug that panics rather than returning an error.
//
// A Lock is for single-threaded use. The cross-process story needs no mutex:
// the mutation guard directory serializes roster access between processes,
// and the long-held exclusive guard serializes exclusive sessions.
type Lock struct {
	dir   string
	base  string
	id    Identity
	state State
	guard *Guard // long-held exclusive guard, non-nil only in StateExclusive
}

// New creates an unlocked session for the lock named base inside dir, on
// behalf of id. The identity is injected rather than looked up so that tests
// can simulate distinct processes and so no hidden global state decides who
// we are mid-operation.
func New(dir, base string, id Identity) *Lock {
	return &Lock{dir: dir, base: base, id: id}
}

// RosterPath returns the path of the roster file for this lock.
func (l *Lock) RosterPath() string { return filepath.Join(l.dir, l.base+".roster") }

// ExclusivePath returns the path of the long-held exclusive guard directory.
func (l *Lock) ExclusivePath() string { return filepath.Join(l.dir, l.base+".exclusive") }

// MutatePath returns the path of the short-lived roster mutation guard
// directory. In a healthy system this directory exists only for the few
// milliseconds of a single roster read-modify-write.
func (l *Lock) MutatePath() string { return filepath.Join(l.dir, l.base+".mutate") }

// State returns the session's current state.
func (l *Lock) State() State { return l.state }

// Identity returns the identity this session acquires as.
func (l *Lock) Identity() Identity { return l.id }

// withRoster runs fn on the loaded roster and persists the result, all under
// the mutation guard. This is the only path that touches the roster file, so
// concurrent processes never interleave a read-modify-write.
func (l *Lock) withRoster(fn func(*Roster) error) error {
	mg, err := AcquireGuard(l.MutatePath(), l.id)
	if err != nil {
		return err
	}
	defer mg.Release()

	roster, err := LoadRoster(l.RosterPath())
	if err != nil {
		return err
	}
	if err := fn(roster); err != nil {
		return err
	}
	return roster.Update(l.RosterPath())
}

// LockExclusive acquires exclusive access. Callable only from Unlocked.
//
// The long-held guard directory is taken first: its existence is the fast
// cross-process busy signal for exclusive sessions. Only then is the roster
// updated under the mutation guard. If the roster step fails (somebody holds
// shared access, the roster is corrupt, the disk is full) the guard taken in
// the first step is released again so a failed acquisition leaves nothing
// behind.
func (l *Lock) LockExclusive() error {
	if l.state != StateUnlocked {
		panic(fmt.Sprintf("lock: LockExclusive called while already %s", l.state))
	}
	guard, err := AcquireGuard(l.ExclusivePath(), l.id)
	if err != nil {
		return err
	}
	if err := l.withRoster(func(r *Roster) error {
		return r.MakeExclusive(l.id)
	}); err != nil {
		guard.Release()
		return err
	}
	l.guard = guard
	l.state = StateExclusive
	return nil
}

// LockShared acquires shared access. Callable only from Unlocked.
//
// Shared holders need no mutual exclusion among themselves, so no long-held
// guard is taken; the roster's holder list, mutated under the mutation guard,
// is the entire record of shared access.
func (l *Lock) LockShared() error {
	if l.state != StateUnlocked {
		panic(fmt.Sprintf("lock: LockShared called while already %s", l.state))
	}
	if err := l.withRoster(func(r *Roster) error {
		return r.AddShared(l.id)
	}); err != nil {
		return err
	}
	l.state = StateShared
	return nil
}

// Release gives up whatever this session holds. It is idempotent: releasing
// an unlocked session is a successful no-op, so callers can release again
// after a partial failure without harm.
//
// Even when the roster update fails, the long-held guard is still released
// and the session still transitions to Unlocked; keeping the guard alive
// with no way to retry through this session would pin the repository for
// everyone.
func (l *Lock) Release() error {
	if l.state == StateUnlocked {
		return nil
	}
	err := l.withRoster(func(r *Roster) error {
		r.RemoveHolder(l.id)
		return nil
	})
	if l.guard != nil {
		l.guard.Release()
		l.guard = nil
	}
	l.state = StateUnlocked
	if err != nil {
		return fmt.Errorf("releasing %s lock: %w", l.base, err)
	}
	return nil
}

// Close releases the session, absorbing any error. It exists for defer: a
// deferred Close guarantees release on every exit path, including panics,
// without a release failure masking whatever error is already unwinding.
// Prefer calling Release directly on the happy path so failures surface.
func (l *Lock) Close() {
	if err := l.Release(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
