// Package repo opens an on-disk repository far enough to coordinate access
// to it: it validates the directory, reads the repository config, and hands
// out the repository lock. The content store, index and manifest layers are
// not handled here.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/repolock/repolock/internal/lock"
	"github.com/repolock/repolock/internal/repoconfig"
)

// ErrNotRepository means the path does not look like a repository (no config
// file inside it).
var ErrNotRepository = errors.New("not a repository")

// ConfigName is the config file name inside a repository directory.
const ConfigName = "config"

// lockBase is the name prefix of the repository lock's on-disk artifacts
// (lock.roster, lock.exclusive, lock.mutate).
const lockBase = "lock"

// Repository is an opened repository: its path, its parsed config, and typed
// views of the standard config keys.
type Repository struct {
	Path string

	Version        uint64
	SegmentsPerDir uint64
	MaxSegmentSize uint64
	AppendOnly     bool
	ID             string // hex repository id
	Key            []byte // wrapped key blob, nil when the repo is keyless

	entries []repoconfig.Entry
}

// Open validates path and reads its config. A directory without a config file
// is reported as ErrNotRepository; a present but unreadable or unparseable
// config propagates as-is.
func Open(path string) (*Repository, error) {
	configPath := filepath.Join(path, ConfigName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
	}

	entries, err := repoconfig.ParseFile(configPath)
	if err != nil {
		return nil, err
	}

	r := &Repository{Path: path, entries: entries}
	section := ""
	for _, e := range entries {
		if e.IsSection() {
			section, _ = e.Value.Text()
			continue
		}
		if section != "repository" {
			continue
		}
		switch e.Key {
		case "version":
			r.Version, _ = e.Value.Int()
		case "segments_per_dir":
			r.SegmentsPerDir, _ = e.Value.Int()
		case "max_segment_size":
			r.MaxSegmentSize, _ = e.Value.Int()
		case "append_only":
			n, _ := e.Value.Int()
			r.AppendOnly = n != 0
		case "id":
			r.ID, _ = e.Value.Hex()
		case "key":
			r.Key, _ = e.Value.Blob()
		}
	}

	if r.Version != 1 {
		return nil, fmt.Errorf("%s: unsupported repository version %d", path, r.Version)
	}
	return r, nil
}

// Entries returns the raw ordered config pairs, section headers included.
func (r *Repository) Entries() []repoconfig.Entry {
	out := make([]repoconfig.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// NewLock creates an unlocked session on the repository lock for id. The
// lock's artifacts live directly in the repository directory under the
// "lock" base name.
func (r *Repository) NewLock(id lock.Identity) *lock.Lock {
	return lock.New(r.Path, lockBase, id)
}

// LockBase returns the lock name prefix used inside the repository.
func (r *Repository) LockBase() string { return lockBase }
