package lock

import (
	"fmt"
	"os"
	"path/filepath"
)

// Guard is a directory-existence mutual-exclusion primitive. Acquiring it
// atomically creates the directory; the creation either succeeds because the
// directory was absent or fails because somebody else got there first. The
// directory's existence is the whole signal — the marker file written inside
// it records the owner's identity for human diagnostics only and is never
// consulted for correctness.
//
// The filesystem, not in-process bookkeeping, enforces that at most one Guard
// exists for a given path at a time. This only works on filesystems with
// atomic create-if-absent mkdir semantics (any POSIX-like local filesystem;
// network filesystems need the same guarantee or this primitive is unsound).
type Guard struct {
	dir    string
	marker string
}

// AcquireGuard attempts to take ownership of dir. If the directory already
// exists the guard is held elsewhere and the error matches ErrLockBusy; any
// other filesystem failure propagates as-is. If the directory is created but
// the marker cannot be written, the directory is rolled back before the error
// returns, so a half-constructed guard never blocks future acquisition.
func AcquireGuard(dir string, id Identity) (*Guard, error) {
	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("guard %s: %w", dir, ErrLockBusy)
		}
		return nil, fmt.Errorf("creating guard %s: %w", dir, err)
	}
	marker := filepath.Join(dir, id.Filename())
	if err := os.WriteFile(marker, nil, 0644); err != nil {
		if rmErr := os.Remove(dir); rmErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to roll back guard %s: %v\n", dir, rmErr)
		}
		return nil, fmt.Errorf("writing guard marker: %w", err)
	}
	return &Guard{dir: dir, marker: marker}, nil
}

// Dir returns the guard directory path.
func (g *Guard) Dir() string { return g.dir }

// Release removes the marker and then the directory. It is best-effort:
// the caller may itself be unwinding from an earlier error, so failures are
// warned about on stderr and never escalated. A crash or failure here leaves
// a stale directory that blocks all future acquisition until an operator
// breaks it.
func (g *Guard) Release() {
	if g == nil {
		return
	}
	if err := os.Remove(g.marker); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to remove guard marker %s: %v\n", g.marker, err)
	}
	if err := os.Remove(g.dir); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to remove guard directory %s: %v\n", g.dir, err)
	}
}
