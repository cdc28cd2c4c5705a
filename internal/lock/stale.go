package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// GuardInfo describes one guard directory found on disk, for stale-lock
// diagnostics. Holder is parsed from the marker filename and is only as
// trustworthy as that marker; HolderKnown is false when no marker could be
// read back into an identity.
type GuardInfo struct {
	Dir         string
	Kind        string // "exclusive" or "mutate"
	Holder      Identity
	HolderKnown bool
	ModTime     time.Time
}

// Age returns how long ago the guard directory was last modified.
func (g GuardInfo) Age(now time.Time) time.Duration {
	return now.Sub(g.ModTime)
}

// InspectGuards reports the guard directories currently present for the lock
// named base inside dir. A healthy idle repository reports nothing; a
// long-lived mutate guard always indicates a crash mid-mutation.
func InspectGuards(dir, base string) ([]GuardInfo, error) {
	var infos []GuardInfo
	for _, kind := range []string{"exclusive", "mutate"} {
		path := filepath.Join(dir, base+"."+kind)
		fi, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("inspecting guard %s: %w", path, err)
		}
		info := GuardInfo{Dir: path, Kind: kind, ModTime: fi.ModTime()}
		entries, err := os.ReadDir(path)
		if err == nil {
			for _, e := range entries {
				if id, ok := ParseIdentityFilename(e.Name()); ok {
					info.Holder = id
					info.HolderKnown = true
					break
				}
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// BreakPolicy decides when an operator may be told a guard is breakable.
// It never breaks anything itself, and it deliberately errs on the side of
// "not breakable": a guard held by a live process on another host looks
// identical to one whose holder crashed there.
type BreakPolicy struct {
	// MaxAge marks any guard older than this as breakable regardless of
	// holder. Zero disables the age rule.
	MaxAge time.Duration
	// LocalHost is compared against the guard holder's recorded host; when
	// they match, the holder pid can be probed for liveness directly.
	LocalHost string
}

// Breakable reports whether the guard may be offered to the operator for
// breaking, and the reason why.
func (p BreakPolicy) Breakable(g GuardInfo, now time.Time) (bool, string) {
	if g.HolderKnown && p.LocalHost != "" && g.Holder.Host == p.LocalHost {
		if !pidAlive(g.Holder.Pid) {
			return true, fmt.Sprintf("holder %s has no live process on this host", g.Holder.Filename())
		}
		return false, ""
	}
	if p.MaxAge > 0 && g.Age(now) > p.MaxAge {
		return true, fmt.Sprintf("guard untouched for %s (limit %s)", g.Age(now).Round(time.Second), p.MaxAge)
	}
	return false, ""
}

// BreakGuard forcibly removes a guard directory and everything in it. This is
// an operator action, never taken automatically; removing a guard whose
// holder is still alive destroys the mutual exclusion it provided.
func BreakGuard(g GuardInfo) error {
	if err := os.RemoveAll(g.Dir); err != nil {
		return fmt.Errorf("breaking guard %s: %w", g.Dir, err)
	}
	return nil
}

// ScrubHolder removes id from the roster under the mutation guard, for use
// after breaking a crashed holder's guard. The scrubbing process supplies its
// own identity for the mutation guard marker.
func ScrubHolder(dir, base string, id, self Identity) error {
	l := New(dir, base, self)
	return l.withRoster(func(r *Roster) error {
		r.RemoveHolder(id)
		return nil
	})
}
